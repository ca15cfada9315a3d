package source

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironsheep/tategaki-ocr/internal/errors"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\nfake")

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngMagic)
	}))
	defer srv.Close()

	data, err := NewFetcher(time.Second, 1024).Fetch(context.Background(), srv.URL+"/page.png")
	require.NoError(t, err)
	assert.Equal(t, pngMagic, data)
}

func TestFetch_OctetStreamAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(pngMagic)
	}))
	defer srv.Close()

	_, err := NewFetcher(time.Second, 1024).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
}

func TestFetch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"html page", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html></html>"))
		}},
		{"json body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}},
		{"too large", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(bytes.Repeat([]byte{0}, 2048))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewFetcher(time.Second, 1024).Fetch(context.Background(), srv.URL)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeImageFetch, apperrors.CodeOf(err))
			assert.True(t, apperrors.IsClientError(err))
		})
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := NewFetcher(time.Second, 1024)

	for _, u := range []string{"ftp://example.com/a.png", "file:///etc/passwd", "::not a url", "page.png"} {
		_, err := f.Fetch(context.Background(), u)
		assert.Equal(t, apperrors.CodeImageFetch, apperrors.CodeOf(err), "url %q", u)
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewFetcher(5*time.Second, 1024).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// newUploadRequest builds a multipart request with one file field.
func newUploadRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "page.png")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("orientation", "vertical"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/ocr_local", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadUpload(t *testing.T) {
	req := newUploadRequest(t, "image", pngMagic)

	data, ok, err := ReadUpload(req, "image", 1024)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pngMagic, data)
	assert.Equal(t, "vertical", req.FormValue("orientation"))
}

func TestReadUpload_MissingField(t *testing.T) {
	_, ok, err := ReadUpload(newUploadRequest(t, "other", pngMagic), "image", 1024)
	require.NoError(t, err)
	assert.False(t, ok)

	plain := httptest.NewRequest(http.MethodPost, "/ocr_local", strings.NewReader("x=1"))
	plain.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, ok, err = ReadUpload(plain, "image", 1024)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadUpload_TooLarge(t *testing.T) {
	_, ok, err := ReadUpload(newUploadRequest(t, "image", bytes.Repeat([]byte{1}, 4096)), "image", 1024)
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, apperrors.CodeInvalidRequest, apperrors.CodeOf(err))
}
