package petri

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// maxRunLength caps a single RLE run count.
	maxRunLength = 100000
	// maxPatternCells caps the number of live cells any pattern source may
	// produce.
	maxPatternCells = 10000000
	// rleWrapColumn is the maximum emitted line width.
	rleWrapColumn = 70
)

// ErrPatternTooLarge is returned when a pattern source exceeds the run or
// cell caps.
var ErrPatternTooLarge = errors.New("pattern too large")

// Cell is a live-cell coordinate produced by the pattern parsers.
type Cell struct {
	X, Y int
}

// ParseRLE decodes a run-length-encoded pattern into live-cell coordinates.
// Metadata lines (starting with '#' or the "x = ..." header) are skipped.
// Recognized tokens are digits (run count), 'b'/'.' (dead), 'o'/'*' (live),
// '$' (next row) and '!' (end); anything else is ignored.
func ParseRLE(src string) ([]Cell, error) {
	var body strings.Builder
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}
		if (trimmed[0] == 'x' || trimmed[0] == 'X') && strings.Contains(trimmed, "=") {
			continue
		}
		body.WriteString(trimmed)
	}

	var cells []Cell
	x, y, run := 0, 0, 0
	for _, ch := range body.String() {
		switch {
		case ch >= '0' && ch <= '9':
			run = run*10 + int(ch-'0')
			if run > maxRunLength {
				return nil, fmt.Errorf("%w: run length %d exceeds %d", ErrPatternTooLarge, run, maxRunLength)
			}
		case ch == 'b' || ch == '.':
			x += runCount(run)
			run = 0
		case ch == 'o' || ch == '*':
			n := runCount(run)
			if len(cells)+n > maxPatternCells {
				return nil, fmt.Errorf("%w: more than %d cells", ErrPatternTooLarge, maxPatternCells)
			}
			for i := 0; i < n; i++ {
				cells = append(cells, Cell{X: x + i, Y: y})
			}
			x += n
			run = 0
		case ch == '$':
			y += runCount(run)
			x = 0
			run = 0
		case ch == '!':
			return cells, nil
		default:
			// Unknown characters (stray whitespace and the like) are
			// ignored, leaving any pending run intact.
		}
	}
	return cells, nil
}

// runCount resolves a pending run counter: an absent count means one.
func runCount(run int) int {
	if run < 1 {
		return 1
	}
	return run
}

// EncodeRLE encodes live-cell coordinates as RLE text with a comment and
// size header, wrapping the body at rleWrapColumn characters. Coordinates
// are normalized so the bounding-box origin maps to (0, 0); the returned
// width and height describe that box. The output re-parses to the same cell
// set up to that translation.
func EncodeRLE(cells []Cell, rule string) (rle string, w, h int) {
	if len(cells) == 0 {
		return fmt.Sprintf("#C petri\nx = 0, y = 0, rule = %s\n!\n", rule), 0, 0
	}

	minX, minY := cells[0].X, cells[0].Y
	maxX, maxY := minX, minY
	for _, c := range cells[1:] {
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		minY = min(minY, c.Y)
		maxY = max(maxY, c.Y)
	}
	w = maxX - minX + 1
	h = maxY - minY + 1

	// Dense row grid of the bounding box, cheap to walk for runs.
	grid := make([]bool, w*h)
	for _, c := range cells {
		grid[(c.Y-minY)*w+(c.X-minX)] = true
	}

	var out strings.Builder
	out.WriteString("#C petri\n")
	fmt.Fprintf(&out, "x = %d, y = %d, rule = %s\n", w, h, rule)

	line := ""
	emit := func(token string) {
		if len(line)+len(token) > rleWrapColumn {
			out.WriteString(line)
			out.WriteByte('\n')
			line = ""
		}
		line += token
	}
	token := func(count int, sym byte) string {
		if count == 1 {
			return string(sym)
		}
		return fmt.Sprintf("%d%c", count, sym)
	}

	pendingRows := 0
	for row := 0; row < h; row++ {
		// Trailing dead cells of each row are omitted.
		end := w
		for end > 0 && !grid[row*w+end-1] {
			end--
		}
		if end == 0 {
			pendingRows++
			continue
		}
		if row > 0 {
			emit(token(pendingRows+1, '$'))
		}
		pendingRows = 0

		for col := 0; col < end; {
			alive := grid[row*w+col]
			runLen := 1
			for col+runLen < end && grid[row*w+col+runLen] == alive {
				runLen++
			}
			sym := byte('b')
			if alive {
				sym = 'o'
			}
			emit(token(runLen, sym))
			col += runLen
		}
	}
	emit("!")
	out.WriteString(line)
	out.WriteByte('\n')
	return out.String(), w, h
}

// cellsFromStore collects every live cell of the store as coordinates.
func cellsFromStore(s *Store) []Cell {
	cells := make([]Cell, 0, s.Population())
	s.Each(func(cx, cy int32, c *Chunk) {
		baseX := int(cx) * chunkSize
		baseY := int(cy) * chunkSize
		for ly := 0; ly < chunkSize; ly++ {
			row := c.rows[ly]
			for row != 0 {
				lx := trailingZeros(row)
				row &= row - 1
				cells = append(cells, Cell{X: baseX + lx, Y: baseY + ly})
			}
		}
	})
	return cells
}

// loadPacked writes a flat packed bitmap into the store with its origin at
// global (0, 0). data holds ceil(w/32) words per row; bit c%32 of word
// r*stride + c/32 is the cell at (c, r). Rows shorter than the stride read
// as dead. Empty chunks never survive the load.
func loadPacked(s *Store, w, h int, data []uint32) {
	if w <= 0 || h <= 0 {
		return
	}
	stride := (w + chunkMask) / chunkSize
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			idx := r*stride + c/chunkSize
			if idx >= len(data) {
				continue
			}
			if data[idx]>>uint(c%chunkSize)&1 != 0 {
				s.SetCell(c, r, 1)
			}
		}
	}
}
