package dialogue

import "sync"

// SessionLocks serializes turns per session. The lock is held for the whole
// turn (load state, external calls, save state) so near-simultaneous
// messages from the same chat cannot interleave. Turns for distinct
// sessions run fully in parallel.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the exclusive lock for sessionId and returns the unlock
// function. Locks are never evicted; one mutex per seen session is cheap.
func (l *SessionLocks) Lock(sessionId string) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionId]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionId] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
