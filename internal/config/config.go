// Package config loads service configuration from TATEGAKI_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ironsheep/tategaki-ocr/internal/detection"
)

// Prefix is prepended to every environment variable name.
const Prefix = "TATEGAKI_"

// Config holds service configuration.
type Config struct {
	// HTTP
	ListenAddr      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64

	// Remote images
	FetchTimeout  time.Duration
	MaxFetchBytes int64
	MaxPixels     int

	// Logging
	LogLevel string

	// Recognition engine
	Language       string
	TessdataPrefix string
	PageSegMode    int
	EnginePoolSize int

	// Pipeline
	BinarizeVertical   bool
	BinarizeHorizontal bool
	SplitEnabled       bool
	DebugDir           string
	Detection          detection.Config
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		ListenAddr:         ":5001",
		RequestTimeout:     60 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxUploadBytes:     20 << 20,
		FetchTimeout:       15 * time.Second,
		MaxFetchBytes:      20 << 20,
		MaxPixels:          50_000_000,
		LogLevel:           "info",
		Language:           "jpn",
		PageSegMode:        6,
		EnginePoolSize:     1,
		BinarizeVertical:   true,
		BinarizeHorizontal: false,
		SplitEnabled:       false,
		Detection:          detection.DefaultConfig(),
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the environment on top of Default and validates the result.
func Load() (*Config, error) {
	cfg := Default()
	e := &envReader{}

	cfg.ListenAddr = e.str("LISTEN_ADDR", cfg.ListenAddr)
	cfg.RequestTimeout = e.duration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ShutdownTimeout = e.duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.MaxUploadBytes = e.integer64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.FetchTimeout = e.duration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.MaxFetchBytes = e.integer64("MAX_FETCH_BYTES", cfg.MaxFetchBytes)
	cfg.MaxPixels = e.integer("MAX_PIXELS", cfg.MaxPixels)
	cfg.LogLevel = e.str("LOG_LEVEL", cfg.LogLevel)
	cfg.Language = e.str("LANGUAGE", cfg.Language)
	cfg.TessdataPrefix = e.str("TESSDATA_PREFIX", cfg.TessdataPrefix)
	cfg.PageSegMode = e.integer("PAGE_SEG_MODE", cfg.PageSegMode)
	cfg.EnginePoolSize = e.integer("ENGINE_POOL_SIZE", cfg.EnginePoolSize)
	cfg.BinarizeVertical = e.boolean("BINARIZE_VERTICAL", cfg.BinarizeVertical)
	cfg.BinarizeHorizontal = e.boolean("BINARIZE_HORIZONTAL", cfg.BinarizeHorizontal)
	cfg.SplitEnabled = e.boolean("SPLIT_ENABLED", cfg.SplitEnabled)
	cfg.DebugDir = e.str("DEBUG_DIR", cfg.DebugDir)

	d := &cfg.Detection
	d.BlockSize = e.integer("BLOCK_SIZE", d.BlockSize)
	d.Bias = e.integer("BIAS", d.Bias)
	d.MinRegionWidth = e.integer("MIN_REGION_WIDTH", d.MinRegionWidth)
	d.MinRegionHeight = e.integer("MIN_REGION_HEIGHT", d.MinRegionHeight)
	d.ReadingOrder = detection.ReadingOrder(e.str("READING_ORDER", string(d.ReadingOrder)))
	d.MinCharWidth = e.integer("MIN_CHAR_WIDTH", d.MinCharWidth)
	d.SplitMinWidth = e.integer("SPLIT_MIN_WIDTH", d.SplitMinWidth)
	d.BaselineRatio = e.float("BASELINE_RATIO", d.BaselineRatio)
	d.StripThickness = e.integer("STRIP_THICKNESS", d.StripThickness)
	d.DensityFactor = e.float("DENSITY_FACTOR", d.DensityFactor)

	if err := errors.Join(e.errs...); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%sLISTEN_ADDR is required", Prefix)
	}
	if c.Language == "" {
		return fmt.Errorf("%sLANGUAGE is required", Prefix)
	}
	if c.EnginePoolSize < 1 || c.EnginePoolSize > 64 {
		return fmt.Errorf("%sENGINE_POOL_SIZE must be between 1 and 64, got %d", Prefix, c.EnginePoolSize)
	}
	if c.PageSegMode < 0 || c.PageSegMode > 13 {
		return fmt.Errorf("%sPAGE_SEG_MODE must be between 0 and 13, got %d", Prefix, c.PageSegMode)
	}
	if c.RequestTimeout <= 0 || c.FetchTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.MaxUploadBytes <= 0 || c.MaxFetchBytes <= 0 || c.MaxPixels <= 0 {
		return fmt.Errorf("size limits must be positive")
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	return nil
}

// envReader reads prefixed variables, falling back to a default when a
// variable is unset and recording values that do not parse.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(Prefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s=%q: %w", Prefix, key, value, err))
}

func (e *envReader) str(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envReader) integer64(key string, def int64) int64 {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envReader) float(key string, def float64) float64 {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *envReader) boolean(key string, def bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}

// duration accepts Go duration strings ("30s") and bare seconds ("30").
func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}
