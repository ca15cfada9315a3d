package log

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// TestSetLevel checks every supported name plus the fallback branch.
func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelInfo) })

	cases := []struct {
		in       string
		expected zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, c := range cases {
		SetLevel(c.in)
		if got := zapLevel.Level(); got != c.expected {
			t.Fatalf("SetLevel(%q) = %v; want %v", c.in, got, c.expected)
		}
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	if l == nil {
		t.Fatal("Nop() returned nil")
	}
	l.Infof("discarded %d", 1)
}

func TestCallerFrame(t *testing.T) {
	var direct, skipped bytes.Buffer

	newLogger(zapcore.AddSync(&direct), 0).Infof("direct")
	if !strings.Contains(direct.String(), "log/log_test.go:") {
		t.Errorf("direct logger caller: got %q, want log_test.go", direct.String())
	}

	// The helper logger skips one frame, which from here lands in the test runner.
	newLogger(zapcore.AddSync(&skipped), 1).Infof("skipped")
	if strings.Contains(skipped.String(), "log/log_test.go:") {
		t.Errorf("helper logger caller: got %q, want the frame above the caller", skipped.String())
	}
}
