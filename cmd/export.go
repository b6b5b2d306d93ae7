package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/irfansharif/neonglow/internal/render"
)

// exportFrame writes buf as a timestamped PNG in dir and returns its path.
func exportFrame(dir string, buf *render.Buffer, now time.Time) (string, error) {
	if buf == nil {
		return "", fmt.Errorf("no frame rendered yet")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("neonglow-%s.png", now.Format("20060102-150405.000")))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := buf.WritePNG(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
