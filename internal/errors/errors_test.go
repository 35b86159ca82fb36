package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := New(OcrFailure, "engine call failed")
	if !strings.Contains(err.Error(), "OCR_FAILURE") {
		t.Errorf("Error() = %q, want code name included", err.Error())
	}
	if !strings.Contains(err.Error(), "engine call failed") {
		t.Errorf("Error() = %q, want message included", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, Unavailable, "translate request")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	inner := New(RateLimited, "too many requests")
	outer := fmt.Errorf("calling backend: %w", inner)

	if got := CodeOf(outer); got != RateLimited {
		t.Errorf("CodeOf() = %v, want RateLimited", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != Unknown {
		t.Errorf("CodeOf(plain) = %v, want Unknown", got)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{Unavailable, true},
		{Timeout, true},
		{RateLimited, true},
		{InvalidInput, false},
		{TranslationFailure, false},
		{OcrUnavailable, false},
		{HistoryPersistFailure, false},
	}

	for _, tt := range tests {
		err := New(tt.code, "test")
		if got := IsRetryable(err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.code, got, tt.want)
		}
	}

	if IsRetryable(nil) {
		t.Error("IsRetryable(nil) should be false")
	}
}

func TestWithMetadata(t *testing.T) {
	err := New(CaptureFailure, "screenshot failed").WithMetadata("backend", "scrot")
	if err.Metadata["backend"] != "scrot" {
		t.Errorf("Metadata = %v, want backend=scrot", err.Metadata)
	}
	if !strings.Contains(err.Error(), "scrot") {
		t.Errorf("Error() = %q, want metadata included", err.Error())
	}
}
