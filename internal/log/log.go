// Package log provides the service-wide logger.
//
// Default is a zap SugaredLogger writing console-encoded lines to stderr. The
// level is shared through an atomic level so SetLevel takes effect for every
// logger in this package.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level names accepted by SetLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelFatal = "fatal"
)

var zapLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// Logger is the logging surface used across the service. *zap.SugaredLogger
// satisfies it; tests may substitute their own.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// Default is the process logger. Components that keep a Logger field are
// handed Default, so it reports the frame that called it.
var Default Logger = newLogger(zapcore.AddSync(os.Stderr), 0)

// pkgLogger backs the package-level helpers and skips their frame.
var pkgLogger Logger = newLogger(zapcore.AddSync(os.Stderr), 1)

func newLogger(ws zapcore.WriteSyncer, callerSkip int) *zap.SugaredLogger {
	return zap.New(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), ws, zapLevel),
		zap.AddCaller(),
		zap.AddCallerSkip(callerSkip),
	).Sugar()
}

// SetLevel sets the level shared by Default and the package helpers. Unknown
// names fall back to info.
func SetLevel(level string) {
	switch level {
	case LevelDebug:
		zapLevel.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		zapLevel.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		zapLevel.SetLevel(zapcore.WarnLevel)
	case LevelError:
		zapLevel.SetLevel(zapcore.ErrorLevel)
	case LevelFatal:
		zapLevel.SetLevel(zapcore.FatalLevel)
	default:
		zapLevel.SetLevel(zapcore.InfoLevel)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

// Debugf logs to DEBUG. Arguments are handled in the manner of fmt.Printf.
func Debugf(format string, args ...any) {
	pkgLogger.Debugf(format, args...)
}

// Infof logs to INFO. Arguments are handled in the manner of fmt.Printf.
func Infof(format string, args ...any) {
	pkgLogger.Infof(format, args...)
}

// Warnf logs to WARN. Arguments are handled in the manner of fmt.Printf.
func Warnf(format string, args ...any) {
	pkgLogger.Warnf(format, args...)
}

// Errorf logs to ERROR. Arguments are handled in the manner of fmt.Printf.
func Errorf(format string, args ...any) {
	pkgLogger.Errorf(format, args...)
}

// Fatalf logs to FATAL and exits. Arguments are handled in the manner of fmt.Printf.
func Fatalf(format string, args ...any) {
	pkgLogger.Fatalf(format, args...)
}
