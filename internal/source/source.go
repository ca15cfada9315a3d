// Package source retrieves raw image bytes for a request, either from a
// multipart upload or from a caller-supplied URL.
//
// Neither path decodes anything; the bytes are handed to imaging.Decode by the
// caller. Both paths enforce a size limit so that a single request cannot pin
// an unbounded amount of memory.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/ironsheep/tategaki-ocr/internal/errors"
)

// ErrTooLarge is wrapped when a body exceeds the configured limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// Fetcher downloads images over HTTP(S).
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a Fetcher whose requests time out after timeout and whose
// bodies are capped at maxBytes.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return NewFetcherWithClient(&http.Client{Timeout: timeout}, maxBytes)
}

// NewFetcherWithClient creates a Fetcher around an existing client.
func NewFetcherWithClient(client *http.Client, maxBytes int64) *Fetcher {
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch GETs rawURL and returns the body.
//
// Only http and https URLs are accepted. A non-2xx status, a text or JSON
// content type, or a body over the limit is reported as an ImageFetchError.
// Context cancellation is returned unwrapped.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.NewImageFetchError(rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.NewImageFetchError(rawURL, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperrors.NewImageFetchError(rawURL, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewImageFetchError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewImageFetchError(rawURL, fmt.Errorf("unexpected status %s", resp.Status))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !imageContentType(ct) {
		return nil, apperrors.NewImageFetchError(rawURL, fmt.Errorf("unexpected content type %q", ct))
	}

	data, err := readLimited(resp.Body, f.maxBytes)
	if err != nil {
		return nil, apperrors.NewImageFetchError(rawURL, err)
	}
	return data, nil
}

// imageContentType rejects media types that are clearly not image payloads.
// Servers often label images application/octet-stream, so anything that is
// not text or JSON passes.
func imageContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return false
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return false
	}
	return true
}

// ReadUpload returns the bytes of the multipart file field named field.
//
// ok is false when the request carries no such field; err is set only when the
// field exists but cannot be read or exceeds maxBytes.
func ReadUpload(r *http.Request, field string, maxBytes int64) (data []byte, ok bool, err error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, false, nil
		}
		return nil, false, &apperrors.Error{Code: apperrors.CodeInvalidRequest, Message: "failed to read upload", Cause: err}
	}
	defer file.Close()

	data, err = readLimited(file, maxBytes)
	if err != nil {
		return nil, true, &apperrors.Error{Code: apperrors.CodeInvalidRequest, Message: "failed to read upload", Cause: err}
	}
	return data, true, nil
}

// readLimited reads r to the end, failing with ErrTooLarge past maxBytes.
// maxBytes <= 0 disables the limit.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}
