// Package capture provides platform-agnostic screen region capture
package capture

import (
	"fmt"
	"os"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

// Region is the screen rectangle to capture, in pixels.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// Valid reports whether the region has positive extent.
func (r Region) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Capturer captures still images of a fixed screen region.
type Capturer interface {
	Capture() ([]byte, error)
	Close()
}

// backend implements platform-specific raw capture
type backend interface {
	captureRaw(region Region) ([]byte, error)
	cleanup()
}

// baseCapturer binds a backend to its region and temp storage.
type baseCapturer struct {
	backend
	region  Region
	tempDir string
}

func newBase(b backend, region Region, tempDir string) *baseCapturer {
	return &baseCapturer{backend: b, region: region, tempDir: tempDir}
}

func (c *baseCapturer) Capture() ([]byte, error) {
	data, err := c.captureRaw(c.region)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CaptureFailure, "screen capture failed").
			WithMetadata("region", c.region.String())
	}
	return data, nil
}

func (c *baseCapturer) Close() {
	c.cleanup()
	if c.tempDir != "" {
		os.RemoveAll(c.tempDir)
	}
}
