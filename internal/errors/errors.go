// Package errors defines the failure taxonomy surfaced at the service boundary.
//
// Leaf packages wrap their failures with fmt.Errorf; the constructors here tag
// a failure with a Code so the HTTP layer can tell client-input failures from
// internal ones without inspecting error strings.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	// CodeImageDecode means the input bytes are not a decodable image.
	CodeImageDecode Code = "IMAGE_DECODE_FAILED"
	// CodeImageFetch means a caller-supplied image URL could not be fetched
	// or did not return image content.
	CodeImageFetch Code = "IMAGE_FETCH_FAILED"
	// CodeRecognition means the recognition engine itself failed.
	CodeRecognition Code = "RECOGNITION_FAILED"
	// CodeInvalidRequest means the request is missing a required field or
	// carries an unsupported value.
	CodeInvalidRequest Code = "INVALID_REQUEST"
)

// Error is a classified failure. None of them are retried.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ClientFault reports whether the failure was caused by caller input.
func (e *Error) ClientFault() bool {
	switch e.Code {
	case CodeImageDecode, CodeImageFetch, CodeInvalidRequest:
		return true
	}
	return false
}

// NewImageDecodeError wraps a decoder failure.
func NewImageDecodeError(cause error) *Error {
	return &Error{
		Code:    CodeImageDecode,
		Message: "input is not a decodable image",
		Cause:   cause,
	}
}

// NewImageFetchError wraps a failure to retrieve a remote image.
func NewImageFetchError(url string, cause error) *Error {
	return &Error{
		Code:    CodeImageFetch,
		Message: fmt.Sprintf("failed to fetch image from %s", url),
		Cause:   cause,
	}
}

// NewRecognitionEngineError wraps a failure inside the recognition engine.
func NewRecognitionEngineError(cause error) *Error {
	return &Error{
		Code:    CodeRecognition,
		Message: "recognition engine failed",
		Cause:   cause,
	}
}

// NewInvalidRequestError reports a malformed request. The message is shown to
// the caller verbatim.
func NewInvalidRequestError(message string) *Error {
	return &Error{
		Code:    CodeInvalidRequest,
		Message: message,
	}
}

// CodeOf returns the Code of the first classified error in err's chain, or ""
// if there is none.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsClientError reports whether err's chain contains a client-input failure.
func IsClientError(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.ClientFault()
}

// Is reports whether err's chain contains a classified error with the given code.
func Is(err error, code Code) bool {
	return code != "" && CodeOf(err) == code
}
