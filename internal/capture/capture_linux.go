//go:build linux

package capture

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

type linuxBackend struct{ tempDir string }

func (l *linuxBackend) captureRaw(region Region) ([]byte, error) {
	tmpFile := filepath.Join(l.tempDir, "region.png")
	// Try scrot first (supports autoselect rectangles), fall back to ImageMagick import
	var cmd *exec.Cmd
	if _, err := exec.LookPath("scrot"); err == nil {
		rect := fmt.Sprintf("%d,%d,%d,%d", region.X, region.Y, region.Width, region.Height)
		cmd = exec.Command("scrot", "-o", "-a", rect, tmpFile)
	} else if _, err := exec.LookPath("import"); err == nil {
		crop := fmt.Sprintf("%dx%d+%d+%d", region.Width, region.Height, region.X, region.Y)
		cmd = exec.Command("import", "-window", "root", "-crop", crop, tmpFile)
	} else {
		return nil, fmt.Errorf("no screenshot tool found (install scrot or imagemagick)")
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("screenshot: %w (%s)", err, stderr.String())
	}
	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}
	os.Remove(tmpFile)
	return data, nil
}

func (l *linuxBackend) cleanup() {}

// New creates a platform-specific region capturer
func New(region Region) Capturer {
	tmpDir, err := os.MkdirTemp("", "screen-translator-*")
	if err != nil {
		slog.Error("failed to create temp dir", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&linuxBackend{tempDir: tmpDir}, region, tmpDir)
}
