package dialogue

import (
	"sync"
	"testing"
)

func TestSessionLocksSerializePerSession(t *testing.T) {
	locks := NewSessionLocks()

	var mu sync.Mutex
	active := 0
	maxActive := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("same-session")
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("max concurrent turns for one session = %d, want 1", maxActive)
	}
}

func TestSessionLocksIndependentSessions(t *testing.T) {
	locks := NewSessionLocks()

	unlockA := locks.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b") // must not block on a's lock
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}
