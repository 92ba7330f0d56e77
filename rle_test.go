package petri

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const gosperGun = `#N Gosper glider gun
#O Bill Gosper
x = 36, y = 9, rule = B3/S23
24bo$22bobo$12b2o6b2o12b2o$11bo3bo4b2o12b2o$2o8bo5bo3b2o$2o8bo3bob2o4b
obo$10bo5bo7bo$11bo3bo$12b2o!`

func cellSet(cells []Cell) map[Cell]bool {
	set := make(map[Cell]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}
	return set
}

func TestParseRLEGlider(t *testing.T) {
	cells, err := ParseRLE("bo$2bo$3o!")
	if err != nil {
		t.Fatal(err)
	}
	want := []Cell{{X: 1, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}}
	if diff := cmp.Diff(sortedCells(cellSet(want)), sortedCells(cellSet(cells))); diff != "" {
		t.Fatalf("glider cells (-want +got):\n%s", diff)
	}
}

func TestParseRLESkipsMetadata(t *testing.T) {
	src := "#N Blinker\n#C a comment\nx = 3, y = 1, rule = B3/S23\n3o!"
	cells, err := ParseRLE(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 3 {
		t.Fatalf("parsed %d cells, want 3", len(cells))
	}
}

func TestParseRLEMultiRowJump(t *testing.T) {
	// "o3$o" places cells at (0, 0) and (0, 3).
	cells, err := ParseRLE("o3$o!")
	if err != nil {
		t.Fatal(err)
	}
	want := []Cell{{X: 0, Y: 0}, {X: 0, Y: 3}}
	if diff := cmp.Diff(sortedCells(cellSet(want)), sortedCells(cellSet(cells))); diff != "" {
		t.Fatalf("multi-row jump (-want +got):\n%s", diff)
	}
}

func TestParseRLERunCap(t *testing.T) {
	if _, err := ParseRLE("999999o!"); !errors.Is(err, ErrPatternTooLarge) {
		t.Fatalf("oversized run = %v, want ErrPatternTooLarge", err)
	}
	cells, err := ParseRLE("100o!")
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 100 {
		t.Fatalf("parsed %d cells, want 100", len(cells))
	}
}

func TestRLERoundTripGosperGun(t *testing.T) {
	original, err := ParseRLE(gosperGun)
	if err != nil {
		t.Fatal(err)
	}
	if len(original) != 36 {
		t.Fatalf("gun has %d cells, want 36", len(original))
	}

	emitted, w, h := EncodeRLE(original, "B3/S23")
	if w != 36 || h != 9 {
		t.Fatalf("emitted box %dx%d, want 36x9", w, h)
	}
	reparsed, err := ParseRLE(emitted)
	if err != nil {
		t.Fatalf("emitted RLE does not re-parse: %v", err)
	}
	if diff := cmp.Diff(sortedCells(cellSet(original)), sortedCells(cellSet(reparsed))); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestRLERoundTripNegativeOrigin(t *testing.T) {
	original := []Cell{{X: -5, Y: -2}, {X: -4, Y: -2}, {X: -3, Y: -2}}
	emitted, _, _ := EncodeRLE(original, "B3/S23")
	reparsed, err := ParseRLE(emitted)
	if err != nil {
		t.Fatal(err)
	}
	// Emission translates the bounding box to the origin.
	want := []Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	if diff := cmp.Diff(sortedCells(cellSet(want)), sortedCells(cellSet(reparsed))); diff != "" {
		t.Fatalf("translated round trip (-want +got):\n%s", diff)
	}
}

func TestEncodeRLELineWidth(t *testing.T) {
	// A wide random-ish row pattern forces many tokens and several wraps.
	var cells []Cell
	for x := 0; x < 400; x += 3 {
		cells = append(cells, Cell{X: x, Y: 0})
		cells = append(cells, Cell{X: x, Y: 2})
	}
	emitted, _, _ := EncodeRLE(cells, "B3/S23")
	for i, line := range strings.Split(strings.TrimRight(emitted, "\n"), "\n") {
		if len(line) > rleWrapColumn {
			t.Fatalf("line %d is %d characters: %q", i+1, len(line), line)
		}
	}
	reparsed, err := ParseRLE(emitted)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sortedCells(cellSet(cells)), sortedCells(cellSet(reparsed))); diff != "" {
		t.Fatalf("wrapped emission round trip (-want +got):\n%s", diff)
	}
}

func TestEncodeRLEHeader(t *testing.T) {
	emitted, _, _ := EncodeRLE([]Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, "B36/S23")
	lines := strings.Split(emitted, "\n")
	if len(lines) < 3 || !strings.HasPrefix(lines[0], "#C") {
		t.Fatalf("missing comment header: %q", emitted)
	}
	if lines[1] != "x = 3, y = 1, rule = B36/S23" {
		t.Fatalf("size header = %q", lines[1])
	}
	if lines[2] != "3o!" {
		t.Fatalf("body = %q", lines[2])
	}
}

func TestEncodeRLEEmpty(t *testing.T) {
	emitted, w, h := EncodeRLE(nil, "B3/S23")
	if w != 0 || h != 0 {
		t.Fatalf("empty emission box %dx%d", w, h)
	}
	cells, err := ParseRLE(emitted)
	if err != nil || len(cells) != 0 {
		t.Fatalf("empty emission re-parse: %d cells, %v", len(cells), err)
	}
}

func TestLoadPacked(t *testing.T) {
	// 40x2 bitmap: cells at (0, 0), (35, 0), (3, 1). Stride is 2 words.
	data := []uint32{
		1, 1 << 3,
		1 << 3, 0,
	}
	s := NewStore()
	loadPacked(s, 40, 2, data)
	want := []Cell{{X: 0, Y: 0}, {X: 35, Y: 0}, {X: 3, Y: 1}}
	if diff := cmp.Diff(sortedCells(cellSet(want)), storeCells(s)); diff != "" {
		t.Fatalf("packed load (-want +got):\n%s", diff)
	}
	if s.Population() != 3 {
		t.Fatalf("population = %d, want 3", s.Population())
	}
}

func TestLoadPackedEquivalentToRLE(t *testing.T) {
	cells, err := ParseRLE("bo$2bo$3o!")
	if err != nil {
		t.Fatal(err)
	}
	direct := NewStore()
	for _, c := range cells {
		direct.SetCell(c.X, c.Y, 1)
	}

	// Pack the same pattern into a flat bitmap and load it.
	w, h := 3, 3
	stride := 1
	data := make([]uint32, stride*h)
	for _, c := range cells {
		data[c.Y*stride+c.X/32] |= 1 << uint(c.X%32)
	}
	loaded := NewStore()
	loadPacked(loaded, w, h, data)

	if diff := cmp.Diff(storeCells(direct), storeCells(loaded)); diff != "" {
		t.Fatalf("packed load differs from direct set (-want +got):\n%s", diff)
	}
}
