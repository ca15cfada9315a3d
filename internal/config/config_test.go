package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tategaki-ocr/internal/detection"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5001", cfg.ListenAddr)
	assert.Equal(t, "jpn", cfg.Language)
	assert.Equal(t, 1, cfg.EnginePoolSize)
	assert.True(t, cfg.BinarizeVertical)
	assert.False(t, cfg.BinarizeHorizontal)
	assert.False(t, cfg.SplitEnabled)
	assert.Equal(t, detection.DefaultConfig(), cfg.Detection)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TATEGAKI_LISTEN_ADDR", "127.0.0.1:8080")
	t.Setenv("TATEGAKI_LANGUAGE", "jpn_vert")
	t.Setenv("TATEGAKI_ENGINE_POOL_SIZE", "4")
	t.Setenv("TATEGAKI_REQUEST_TIMEOUT", "90")
	t.Setenv("TATEGAKI_FETCH_TIMEOUT", "2500ms")
	t.Setenv("TATEGAKI_SPLIT_ENABLED", "true")
	t.Setenv("TATEGAKI_READING_ORDER", "columns-rtl")
	t.Setenv("TATEGAKI_BASELINE_RATIO", "0.25")
	t.Setenv("TATEGAKI_BLOCK_SIZE", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "jpn_vert", cfg.Language)
	assert.Equal(t, 4, cfg.EnginePoolSize)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2500*time.Millisecond, cfg.FetchTimeout)
	assert.True(t, cfg.SplitEnabled)
	assert.Equal(t, detection.ReadingOrderColumnsRTL, cfg.Detection.ReadingOrder)
	assert.InDelta(t, 0.25, cfg.Detection.BaselineRatio, 1e-9)
	assert.Equal(t, 15, cfg.Detection.BlockSize)
}

func TestLoad_UnparsableValue(t *testing.T) {
	t.Setenv("TATEGAKI_ENGINE_POOL_SIZE", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TATEGAKI_ENGINE_POOL_SIZE")
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := map[string]string{
		"TATEGAKI_ENGINE_POOL_SIZE": "0",
		"TATEGAKI_PAGE_SEG_MODE":    "20",
		"TATEGAKI_BLOCK_SIZE":       "10",
		"TATEGAKI_READING_ORDER":    "bottom-up",
		"TATEGAKI_MAX_UPLOAD_BYTES": "-1",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TATEGAKI_LOG_LEVEL=debug\nTATEGAKI_LANGUAGE=jpn_vert\n"), 0o644))

	// Variables already set win over the file.
	t.Setenv("TATEGAKI_LANGUAGE", "jpn")
	t.Cleanup(func() { os.Unsetenv("TATEGAKI_LOG_LEVEL") })

	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "jpn", cfg.Language)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
