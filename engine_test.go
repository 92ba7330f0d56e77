package petri

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEngineEmptyEvolution(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.Step()
	e.Step()
	if e.Population() != 0 {
		t.Fatalf("population = %d, want 0", e.Population())
	}
	if !e.Bounds().Empty {
		t.Fatal("bounds should be empty")
	}
	if e.Generation() != 2 {
		t.Fatalf("generation = %d, want 2", e.Generation())
	}
}

func TestEngineChunkGC(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.SetCellAt(100, 100, 1)
	e.SetCellAt(100, 100, 0)
	if e.Store().ChunkCount() != 0 {
		t.Fatalf("chunks = %d, want 0", e.Store().ChunkCount())
	}
}

func TestEngineViewportEdit(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.SetViewportSize(10, 5)
	e.SetViewportOrigin(-20, 30)

	e.SetViewportCell(23, 1) // (3, 2) in the viewport
	if e.CellAt(-17, 32) != 1 {
		t.Fatal("viewport edit landed at the wrong cell")
	}

	// Out-of-range indexes are ignored.
	e.SetViewportCell(-1, 1)
	e.SetViewportCell(50, 1)
	if e.Population() != 1 {
		t.Fatalf("population = %d, want 1", e.Population())
	}
}

func TestEngineRandomizeReplacesViewport(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.SetViewportSize(20, 20)
	e.SetViewportOrigin(0, 0)

	// A cell outside the viewport must survive; everything inside is
	// replaced.
	e.SetCellAt(100, 100, 1)
	e.SetCellAt(5, 5, 1)
	e.Randomize(0)
	if e.CellAt(5, 5) != 0 {
		t.Fatal("density 0 left a live cell inside the viewport")
	}
	if e.CellAt(100, 100) != 1 {
		t.Fatal("randomize touched a cell outside the viewport")
	}

	e.Randomize(1)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if e.CellAt(x, y) != 1 {
				t.Fatalf("density 1 left a dead cell at (%d, %d)", x, y)
			}
		}
	}
}

func TestEngineClear(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.SetAgeTracking(true)
	e.LoadCells([]Cell{{0, 0}, {1, 0}, {2, 0}})
	e.Step()
	oldID := e.WorldID()

	e.Clear()
	if e.Population() != 0 || e.Generation() != 0 || e.HistoryLen() != 0 {
		t.Fatalf("clear left pop=%d gen=%d history=%d",
			e.Population(), e.Generation(), e.HistoryLen())
	}
	if len(e.ages) != 0 {
		t.Fatal("clear left age planes behind")
	}
	if e.WorldID() == oldID {
		t.Fatal("clear should mint a fresh world id")
	}
}

func TestEngineJump(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.LoadCells([]Cell{{0, 0}, {1, 0}, {2, 0}}) // blinker, period 2

	if err := e.JumpTo(0, nil); !errors.Is(err, ErrCannotJumpBackward) {
		t.Fatalf("jump to current = %v, want ErrCannotJumpBackward", err)
	}

	if err := e.JumpTo(10, nil); err != nil {
		t.Fatal(err)
	}
	if e.Generation() != 10 {
		t.Fatalf("generation = %d, want 10", e.Generation())
	}
	// Even period: back to the horizontal phase.
	want := []Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	if diff := cmp.Diff(sortedCells(cellSet(want)), storeCells(e.store)); diff != "" {
		t.Fatalf("store after jump (-want +got):\n%s", diff)
	}
	// Silent stepping must not feed the history ring.
	if e.HistoryLen() != 0 {
		t.Fatalf("jump captured history: %d entries", e.HistoryLen())
	}
}

func TestEngineJumpProgress(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.LoadCells([]Cell{{0, 0}, {1, 0}, {2, 0}})
	var reports [][2]uint64
	err := e.JumpTo(2500, func(current, target uint64) {
		reports = append(reports, [2]uint64{current, target})
	})
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]uint64{{1000, 2500}, {2000, 2500}}
	if diff := cmp.Diff(want, reports); diff != "" {
		t.Fatalf("progress reports (-want +got):\n%s", diff)
	}
}

func TestEngineSetRuleAtomic(t *testing.T) {
	e := NewEngine(DefaultSettings())
	if err := e.SetRule("B36/S23"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetRule("garbage"); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("bad rule = %v, want ErrInvalidRule", err)
	}
	if got := e.Rule().String(); got != "B36/S23" {
		t.Fatalf("failed set mutated the rule: %q", got)
	}
}

func TestEngineSeedDefault(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.SetViewportSize(40, 40)
	e.SeedDefault()
	if e.Population() != len(defaultPattern) {
		t.Fatalf("population = %d, want %d", e.Population(), len(defaultPattern))
	}
	b := e.Bounds()
	if b.Empty {
		t.Fatal("seed produced no chunks")
	}
}

func TestEngineExportImportRoundTrip(t *testing.T) {
	e := NewEngine(DefaultSettings())
	glider, err := ParseRLE("bo$2bo$3o!")
	if err != nil {
		t.Fatal(err)
	}
	e.LoadCells(glider)

	rle, w, h := e.ExportRLE()
	if w != 3 || h != 3 {
		t.Fatalf("export box %dx%d, want 3x3", w, h)
	}
	back, err := ParseRLE(rle)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sortedCells(cellSet(glider)), sortedCells(cellSet(back))); diff != "" {
		t.Fatalf("export round trip (-want +got):\n%s", diff)
	}
}

func TestEngineSnapshotRoundTrip(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.LoadCells([]Cell{{-40, -40}, {-39, -40}, {-38, -40}, {7, 9}})
	if err := e.SetRule("B36/S23"); err != nil {
		t.Fatal(err)
	}
	e.Step()
	e.Step()

	var buf bytes.Buffer
	if err := e.Snapshot(&buf); err != nil {
		t.Fatal(err)
	}

	restored := NewEngine(DefaultSettings())
	if err := restored.RestoreSnapshot(&buf); err != nil {
		t.Fatal(err)
	}
	if restored.Generation() != e.Generation() {
		t.Fatalf("generation = %d, want %d", restored.Generation(), e.Generation())
	}
	if restored.Rule().String() != "B36/S23" {
		t.Fatalf("rule = %q", restored.Rule().String())
	}
	if restored.WorldID() != e.WorldID() {
		t.Fatal("world id not preserved")
	}
	if diff := cmp.Diff(storeCells(e.store), storeCells(restored.store)); diff != "" {
		t.Fatalf("store after restore (-want +got):\n%s", diff)
	}
	if restored.Population() != e.Population() {
		t.Fatalf("population = %d, want %d", restored.Population(), e.Population())
	}
}

func TestEngineRestoreBadSnapshotLeavesState(t *testing.T) {
	e := NewEngine(DefaultSettings())
	e.LoadCells([]Cell{{0, 0}})
	before := storeCells(e.store)

	if err := e.RestoreSnapshot(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Fatal("garbage snapshot restored successfully")
	}
	if diff := cmp.Diff(before, storeCells(e.store)); diff != "" {
		t.Fatalf("failed restore mutated the store (-want +got):\n%s", diff)
	}
}
