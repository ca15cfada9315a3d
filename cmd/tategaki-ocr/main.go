package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/tategaki-ocr/internal/config"
	"github.com/ironsheep/tategaki-ocr/internal/log"
	"github.com/ironsheep/tategaki-ocr/internal/ocr"
	"github.com/ironsheep/tategaki-ocr/internal/ocr/tesseract"
	"github.com/ironsheep/tategaki-ocr/internal/pipeline"
	"github.com/ironsheep/tategaki-ocr/internal/server"
	"github.com/ironsheep/tategaki-ocr/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("tategaki-ocr %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("%v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.SetLevel(cfg.LogLevel)
	log.Infof("tategaki-ocr %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	pool, err := ocr.NewPool(cfg.EnginePoolSize, func() (ocr.Engine, error) {
		return tesseract.New(tesseract.Config{
			Language:       cfg.Language,
			TessdataPrefix: cfg.TessdataPrefix,
			PageSegMode:    cfg.PageSegMode,
		})
	})
	if err != nil {
		log.Fatalf("failed to start recognition engines: %v", err)
	}
	defer pool.Close()
	info := pool.Info()
	log.Infof("Recognition: %s %s, language %s, %d engine(s)", info.Backend, info.Version, info.Language, info.PoolSize)

	var sink pipeline.Sink = pipeline.NopSink{}
	if cfg.DebugDir != "" {
		sink = pipeline.DirSink{Dir: cfg.DebugDir}
		log.Infof("Writing debug snapshots to %s", cfg.DebugDir)
	}

	orchestrator := pipeline.New(pool, pipeline.Options{
		BinarizeVertical:   cfg.BinarizeVertical,
		BinarizeHorizontal: cfg.BinarizeHorizontal,
		SplitEnabled:       cfg.SplitEnabled,
		MaxPixels:          cfg.MaxPixels,
		Detection:          cfg.Detection,
	}, pipeline.WithSink(sink))

	srv := server.New(orchestrator,
		source.NewFetcher(cfg.FetchTimeout, cfg.MaxFetchBytes),
		server.Options{
			Addr:            cfg.ListenAddr,
			RequestTimeout:  cfg.RequestTimeout,
			ShutdownTimeout: cfg.ShutdownTimeout,
			MaxUploadBytes:  cfg.MaxUploadBytes,
		},
		server.WithInfo(pool),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Errorf("Server error: %v", err)
		pool.Close()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("tategaki-ocr - Japanese OCR service with vertical text segmentation")
	fmt.Println()
	fmt.Println("Usage: tategaki-ocr [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from ./.env):")
	fmt.Println("  TATEGAKI_LISTEN_ADDR=:5001          HTTP listen address")
	fmt.Println("  TATEGAKI_LOG_LEVEL=info             debug, info, warn, error")
	fmt.Println("  TATEGAKI_LANGUAGE=jpn               Tesseract language (jpn, jpn_vert)")
	fmt.Println("  TATEGAKI_TESSDATA_PREFIX=           Directory with .traineddata files")
	fmt.Println("  TATEGAKI_PAGE_SEG_MODE=6            Tesseract page segmentation mode")
	fmt.Println("  TATEGAKI_ENGINE_POOL_SIZE=1         Parallel recognition engines")
	fmt.Println("  TATEGAKI_REQUEST_TIMEOUT=60s        Per-request deadline")
	fmt.Println("  TATEGAKI_FETCH_TIMEOUT=15s          Timeout for image_url downloads")
	fmt.Println("  TATEGAKI_MAX_UPLOAD_BYTES=20971520  Upload size limit")
	fmt.Println("  TATEGAKI_MAX_FETCH_BYTES=20971520   Download size limit")
	fmt.Println("  TATEGAKI_BINARIZE_VERTICAL=true     Threshold pages before segmentation")
	fmt.Println("  TATEGAKI_BINARIZE_HORIZONTAL=false  Threshold pages before whole-page OCR")
	fmt.Println("  TATEGAKI_SPLIT_ENABLED=false        Split wide regions at blank columns")
	fmt.Println("  TATEGAKI_READING_ORDER=top-down     top-down or columns-rtl")
	fmt.Println("  TATEGAKI_DEBUG_DIR=                 Write intermediate images here")
}
