package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ai-catalog-admin-be/pkg/media"
	"ai-catalog-admin-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(_, _ string, _ map[string]interface{}) {}
func (nopLogger) Info(_, _ string, _ map[string]interface{})  {}
func (nopLogger) Warn(_, _ string, _ map[string]interface{})  {}
func (nopLogger) Error(_, _ string, _ map[string]interface{}) {}
func (nopLogger) Sync() error                                 { return nil }

type fakeHost struct {
	mu      sync.Mutex
	uploads []string
	nextId  int64
	err     error
}

func (h *fakeHost) Upload(_ context.Context, data []byte, filename, contentType string) (*media.UploadResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	h.uploads = append(h.uploads, filename)
	h.nextId++
	return &media.UploadResult{MediaId: h.nextId, URL: "https://media.example.com/" + filename}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIngestMixedBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	host := &fakeHost{}
	p := NewPipeline(host, nil, nopLogger{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(pngBytes(t, 4, 4))
	}))
	defer srv.Close()

	refs := []store.ImageRef{
		{URL: srv.URL + "/a.png", AltText: "first"},
		{URL: srv.URL + "/missing.png"},
		{Data: pngBytes(t, 2, 2), Filename: "inline.png"},
	}

	result := p.Ingest(context.Background(), refs, false)

	require.Len(t, result.Uploaded, 2)
	require.Len(t, result.Failures, 1)
	// Successful items keep their input order.
	assert.Equal(t, "first", result.Uploaded[0].AltText)
	assert.True(t, errors.Is(result.Failures[0].Err, ErrImageFetch))
	assert.Equal(t, srv.URL+"/missing.png", result.Failures[0].Ref.URL)
}

func TestIngestDataURI(t *testing.T) {
	host := &fakeHost{}
	p := NewPipeline(host, nil, nopLogger{})

	data := pngBytes(t, 3, 3)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	result := p.Ingest(context.Background(), []store.ImageRef{{DataURI: uri}}, false)

	require.Empty(t, result.Failures)
	require.Len(t, result.Uploaded, 1)
	assert.NotZero(t, result.Uploaded[0].MediaId)
}

func TestIngestRejectsNonImageBytes(t *testing.T) {
	host := &fakeHost{}
	p := NewPipeline(host, nil, nopLogger{})

	refs := []store.ImageRef{{Data: []byte("%PDF-1.4 not an image")}}
	result := p.Ingest(context.Background(), refs, false)

	require.Empty(t, result.Uploaded)
	require.Len(t, result.Failures, 1)
	assert.True(t, errors.Is(result.Failures[0].Err, ErrUnsupportedFormat))
	assert.Empty(t, host.uploads)
}

func TestIngestPassThroughSkipsUpload(t *testing.T) {
	host := &fakeHost{}
	p := NewPipeline(host, nil, nopLogger{})

	refs := []store.ImageRef{{MediaId: 77, MediaURL: "https://media.example.com/77.jpg", AltText: "kept"}}
	result := p.Ingest(context.Background(), refs, true)

	require.Empty(t, result.Failures)
	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, int64(77), result.Uploaded[0].MediaId)
	assert.Equal(t, "kept", result.Uploaded[0].AltText)
	assert.Empty(t, host.uploads)
}

func TestIngestWatermarkFailureIsNonFatal(t *testing.T) {
	host := &fakeHost{}
	// Overlay URL that will 500: Apply fails, the original bytes upload.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	wm := NewWatermarker(WatermarkConfig{OverlayURL: srv.URL + "/overlay.png"}, srv.Client())
	p := NewPipeline(host, wm, nopLogger{})

	refs := []store.ImageRef{{Data: pngBytes(t, 4, 4), Filename: "photo.png"}}
	result := p.Ingest(context.Background(), refs, true)

	require.Empty(t, result.Failures)
	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, []string{"photo.png"}, host.uploads)
}

func TestIngestEmptyReferenceFails(t *testing.T) {
	p := NewPipeline(&fakeHost{}, nil, nopLogger{})

	result := p.Ingest(context.Background(), []store.ImageRef{{}}, false)

	require.Len(t, result.Failures, 1)
	assert.True(t, errors.Is(result.Failures[0].Err, ErrUnsupportedFormat))
}
