//go:build darwin

package capture

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

type darwinBackend struct{ tempDir string }

func (d *darwinBackend) captureRaw(region Region) ([]byte, error) {
	tmpFile := filepath.Join(d.tempDir, "region.png")
	rect := fmt.Sprintf("%d,%d,%d,%d", region.X, region.Y, region.Width, region.Height)
	cmd := exec.Command("screencapture", "-x", "-t", "png", "-R", rect, tmpFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("screencapture: %w (%s)", err, stderr.String())
	}
	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}
	os.Remove(tmpFile)
	return data, nil
}

func (d *darwinBackend) cleanup() {}

// New creates a platform-specific region capturer
func New(region Region) Capturer {
	tmpDir, err := os.MkdirTemp("", "screen-translator-*")
	if err != nil {
		slog.Error("failed to create temp dir", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&darwinBackend{tempDir: tmpDir}, region, tmpDir)
}
