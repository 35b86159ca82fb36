package capture

import (
	"errors"
	"testing"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

type fakeBackend struct {
	data []byte
	err  error
}

func (f *fakeBackend) captureRaw(_ Region) ([]byte, error) { return f.data, f.err }
func (f *fakeBackend) cleanup()                            {}

func TestRegionValid(t *testing.T) {
	tests := []struct {
		region Region
		want   bool
	}{
		{Region{0, 0, 800, 200}, true},
		{Region{10, 10, 1, 1}, true},
		{Region{0, 0, 0, 200}, false},
		{Region{0, 0, 800, -1}, false},
	}

	for _, tt := range tests {
		if got := tt.region.Valid(); got != tt.want {
			t.Errorf("Valid(%v) = %v, want %v", tt.region, got, tt.want)
		}
	}
}

func TestRegionString(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 640, Height: 480}
	if r.String() != "10,20 640x480" {
		t.Errorf("String() = %q", r.String())
	}
}

func TestCaptureReturnsBackendData(t *testing.T) {
	c := newBase(&fakeBackend{data: []byte{0x89, 'P', 'N', 'G'}}, Region{0, 0, 10, 10}, "")

	data, err := c.Capture()
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if len(data) != 4 {
		t.Errorf("Capture() returned %d bytes, want 4", len(data))
	}
}

func TestCaptureWrapsBackendError(t *testing.T) {
	c := newBase(&fakeBackend{err: errors.New("display gone")}, Region{0, 0, 10, 10}, "")

	_, err := c.Capture()
	if err == nil {
		t.Fatal("Capture() should fail")
	}
	if !apperrors.IsCode(err, apperrors.CaptureFailure) {
		t.Errorf("error code = %v, want CaptureFailure", apperrors.CodeOf(err))
	}
}
