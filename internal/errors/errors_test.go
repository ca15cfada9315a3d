package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := NewImageDecodeError(io.ErrUnexpectedEOF)
	assert.Equal(t, "IMAGE_DECODE_FAILED: input is not a decodable image: unexpected EOF", err.Error())

	bare := NewInvalidRequestError("No file provided")
	assert.Equal(t, "INVALID_REQUEST: No file provided", bare.Error())
}

func TestError_Unwrap(t *testing.T) {
	err := NewRecognitionEngineError(io.ErrShortBuffer)
	require.True(t, stderrors.Is(err, io.ErrShortBuffer))
}

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("region 3: %w", NewRecognitionEngineError(io.EOF))
	assert.Equal(t, CodeRecognition, CodeOf(err))
	assert.True(t, Is(err, CodeRecognition))
	assert.False(t, Is(err, CodeImageFetch))
	assert.Equal(t, Code(""), CodeOf(io.EOF))
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"decode", NewImageDecodeError(io.EOF), true},
		{"fetch", NewImageFetchError("http://example.invalid/a.png", io.EOF), true},
		{"invalid request", NewInvalidRequestError("bad"), true},
		{"recognition", NewRecognitionEngineError(io.EOF), false},
		{"wrapped fetch", fmt.Errorf("load: %w", NewImageFetchError("u", nil)), true},
		{"unclassified", io.EOF, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClientError(tt.err))
		})
	}
}
