package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadSendsHeadersAndBody(t *testing.T) {
	var gotAuth, gotType, gotDisposition string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotDisposition = r.Header.Get("Content-Disposition")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 55, "source_url": "https://shop.example.com/photo.jpg"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "admin", "secret")
	c.HTTPClient = srv.Client()

	result, err := c.Upload(context.Background(), []byte("jpegbytes"), "photo.jpg", "image/jpeg")
	require.NoError(t, err)

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	assert.Equal(t, wantAuth, gotAuth)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, `attachment; filename="photo.jpg"`, gotDisposition)
	assert.Equal(t, []byte("jpegbytes"), gotBody)
	assert.Equal(t, int64(55), result.MediaId)
	assert.Equal(t, "https://shop.example.com/photo.jpg", result.URL)
}

func TestUploadErrorIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"rest_cannot_create"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "admin", "wrong")
	c.HTTPClient = srv.Client()

	_, err := c.Upload(context.Background(), []byte("x"), "photo.jpg", "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "rest_cannot_create")
}
