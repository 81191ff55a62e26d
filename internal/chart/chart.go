// Package chart renders correlation heatmaps and descriptive bar and pie
// charts to image files. The output format follows the file extension
// (.png, .svg, .pdf, .jpg, .eps, .tif).
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

var (
	// ErrNoData is returned when there is nothing to draw.
	ErrNoData = errors.New("nothing to plot")
	// ErrTooFewColumns is returned when a heatmap would have fewer than two columns.
	ErrTooFewColumns = errors.New("heatmap needs at least two numeric columns")
)

// save writes p to path, creating the parent directory.
func save(p *plot.Plot, w, h vg.Length, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

// slug makes a category value safe for a file name.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "empty"
	}
	return b.String()
}
