// Package errors provides unified error handling with structured error codes.
package errors

import (
	"encoding/json"
	"fmt"
)

// Code classifies failures across the capture/OCR/translate pipeline.
type Code int

const (
	Unknown Code = iota
	Internal
	InvalidInput
	Timeout
	Cancelled
	Unavailable
	RateLimited
	CaptureFailure
	OcrUnavailable
	OcrFailure
	TranslationUnavailable
	TranslationFailure
	HistoryPersistFailure
)

var codeNames = map[Code]string{
	Unknown:                "UNKNOWN",
	Internal:               "INTERNAL",
	InvalidInput:           "INVALID_INPUT",
	Timeout:                "TIMEOUT",
	Cancelled:              "CANCELLED",
	Unavailable:            "UNAVAILABLE",
	RateLimited:            "RATE_LIMITED",
	CaptureFailure:         "CAPTURE_FAILURE",
	OcrUnavailable:         "OCR_UNAVAILABLE",
	OcrFailure:             "OCR_FAILURE",
	TranslationUnavailable: "TRANSLATION_UNAVAILABLE",
	TranslationFailure:     "TRANSLATION_FAILURE",
	HistoryPersistFailure:  "HISTORY_PERSIST_FAILURE",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// MarshalJSON encodes the code by name so API payloads stay readable.
func (c Code) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// AppError is the base error type with structured code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// CodeOf extracts the code from an error chain, walking wrapped causes.
func CodeOf(err error) Code {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Unknown
}

// IsCode checks if an error chain carries a specific error code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsRetryable returns true if the error is potentially transient.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case Unavailable, Timeout, RateLimited:
		return true
	default:
		return false
	}
}
