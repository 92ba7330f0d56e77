package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oriumgames/petri"
)

// loadPattern reads a pattern file into the engine, dispatching on the file
// extension: .rle and .lif parse as RLE, .mc as macrocell, .ptri as a
// binary snapshot.
func loadPattern(e *petri.Engine, path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".ptri" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		if err := e.RestoreSnapshot(f); err != nil {
			return fmt.Errorf("restore %s: %w", path, err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var cells []petri.Cell
	switch ext {
	case ".mc":
		cells, err = petri.ParseMacrocell(string(data))
	default:
		cells, err = petri.ParseRLE(string(data))
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	e.LoadCells(cells)
	return nil
}

// renderText draws a packed update grid as terminal text, one rune per
// cell.
func renderText(grid []uint32, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	stride := (w + 31) / 32
	var b strings.Builder
	b.Grow((w + 1) * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if grid[y*stride+x/32]>>uint(x%32)&1 != 0 {
				b.WriteRune('█')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
