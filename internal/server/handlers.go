package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/ironsheep/tategaki-ocr/internal/errors"
	"github.com/ironsheep/tategaki-ocr/internal/ocr"
	"github.com/ironsheep/tategaki-ocr/internal/pipeline"
	"github.com/ironsheep/tategaki-ocr/internal/source"
)

// Messages kept for compatibility with existing clients.
const (
	homeMessage       = "tategaki-ocr server is running with CORS enabled!"
	msgNoImageURL     = "No image_url provided"
	msgNoFileProvided = "No file provided"
)

const maxJSONBody = 1 << 20

// OCRRequest is the body of POST /ocr.
type OCRRequest struct {
	ImageURL    string `json:"image_url"`
	Orientation string `json:"orientation,omitempty"`
}

// OCRResponse is the success body of both recognition routes.
type OCRResponse struct {
	Text []string `json:"text"`
}

// ErrorResponse is the failure body of every route.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(homeMessage))
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if s.info == nil {
		s.writeJSON(w, http.StatusOK, ocr.Info{Available: false, Error: "no recognition backend configured"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.info.Info())
}

// handleOCR recognizes an image fetched from a caller-supplied URL.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	var req OCRRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.NewInvalidRequestError("request body must be a JSON object"))
		return
	}
	if req.ImageURL == "" {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgNoImageURL})
		return
	}
	orientation, err := pipeline.ParseOrientation(req.Orientation)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	data, err := s.fetcher.Fetch(ctx, req.ImageURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recognize(ctx, w, r, data, orientation)
}

// handleOCRLocal recognizes an uploaded image.
func (s *Server) handleOCRLocal(w http.ResponseWriter, r *http.Request) {
	if s.opts.MaxUploadBytes > 0 {
		// Room for the multipart envelope and the orientation field.
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+(64<<10))
	}

	data, ok, err := source.ReadUpload(r, "image", s.opts.MaxUploadBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgNoFileProvided})
		return
	}
	orientation, err := pipeline.ParseOrientation(r.FormValue("orientation"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	s.recognize(ctx, w, r, data, orientation)
}

func (s *Server) recognize(ctx context.Context, w http.ResponseWriter, r *http.Request, data []byte, orientation pipeline.Orientation) {
	id := pipeline.RequestIDFromContext(ctx)
	res, err := s.processor.Process(ctx, pipeline.Request{
		ID:          id,
		Image:       data,
		Orientation: orientation,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debugf("[%s] %s page %dx%d: %d lines", id, orientation, res.Width, res.Height, len(res.Text))
	s.writeJSON(w, http.StatusOK, OCRResponse{Text: res.Text})
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.opts.RequestTimeout)
}

// statusFor maps a failure to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case apperrors.IsClientError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	id := pipeline.RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Errorf("[%s] %s %s failed: %v", id, r.Method, r.URL.Path, err)
	} else {
		s.logger.Warnf("[%s] %s %s rejected: %v", id, r.Method, r.URL.Path, err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// writeJSON writes v as UTF-8 JSON without HTML escaping, so Japanese text
// and markup characters come through as-is.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Warnf("failed to encode response: %v", err)
	}
}
