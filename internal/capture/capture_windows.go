//go:build windows

package capture

import (
	"fmt"
	"log/slog"
	"os"
)

type windowsBackend struct{ tempDir string }

func (w *windowsBackend) captureRaw(region Region) ([]byte, error) {
	// TODO: capture via GDI BitBlt on the region rectangle
	return nil, fmt.Errorf("windows screen capture not yet implemented")
}

func (w *windowsBackend) cleanup() {}

// New creates a platform-specific region capturer
func New(region Region) Capturer {
	tmpDir, err := os.MkdirTemp("", "screen-translator-*")
	if err != nil {
		slog.Error("failed to create temp dir", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&windowsBackend{tempDir: tmpDir}, region, tmpDir)
}
