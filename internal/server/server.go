package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ironsheep/tategaki-ocr/internal/log"
	"github.com/ironsheep/tategaki-ocr/internal/ocr"
	"github.com/ironsheep/tategaki-ocr/internal/pipeline"
	"github.com/ironsheep/tategaki-ocr/internal/source"
)

// Processor runs one page through recognition.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// InfoProvider describes the recognition backend.
type InfoProvider interface {
	Info() ocr.Info
}

// Options configures the HTTP layer.
type Options struct {
	Addr              string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
	MaxUploadBytes    int64
}

// Server handles HTTP requests.
type Server struct {
	processor Processor
	fetcher   *source.Fetcher
	info      InfoProvider
	opts      Options
	logger    log.Logger

	router  *mux.Router
	handler http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithInfo sets the backend description served on /info.
func WithInfo(p InfoProvider) Option {
	return func(s *Server) { s.info = p }
}

// New creates a Server. fetcher retrieves images for /ocr.
func New(p Processor, fetcher *source.Fetcher, opts Options, options ...Option) *Server {
	s := &Server{
		processor: p,
		fetcher:   fetcher,
		opts:      opts,
		logger:    log.Default,
		router:    mux.NewRouter(),
	}
	for _, opt := range options {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", requestIDHeader},
	})
	s.router.Use(c.Handler)
	s.router.Use(s.withRequestID)
	s.router.Use(s.logRequests)
	s.registerRoutes()

	s.handler = otelhttp.NewHandler(s.router, "tategaki-ocr",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	s.router.HandleFunc("/ocr", s.handleOCR).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/ocr_local", s.handleOCRLocal).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)
}

// Routes lists the registered routes as "PATH [METHODS]".
func (s *Server) Routes() []string {
	var routes []string
	_ = s.router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := route.GetMethods()
		routes = append(routes, fmt.Sprintf("%s [%s]", path, strings.Join(methods, ", ")))
		return nil
	})
	return routes
}

// Run serves on opts.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	readHeader := s.opts.ReadHeaderTimeout
	if readHeader <= 0 {
		readHeader = 10 * time.Second
	}
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeader,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Infof("Registered routes:")
	for _, r := range s.Routes() {
		s.logger.Infof("  Route: %s", r)
	}
	s.logger.Infof("Listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Infof("Shutting down")
	shutdownTimeout := s.opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
