package petri

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// ErrCannotJumpBackward is returned when a jump target does not lie ahead
// of the current generation.
var ErrCannotJumpBackward = errors.New("cannot jump backward")

// defaultPattern is the acorn, seeded into fresh worlds. Seven cells that
// take several thousand generations to settle make an interesting default.
var defaultPattern = []Cell{
	{X: 1, Y: 0},
	{X: 3, Y: 1},
	{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 4, Y: 2}, {X: 5, Y: 2}, {X: 6, Y: 2},
}

// Engine is the single owned handle over the whole simulation state: chunk
// store, rule, overlays, history, viewport and counters. All operations are
// methods on it; it is not safe for concurrent use and is normally driven
// from one goroutine by a Controller.
type Engine struct {
	store      *Store
	rule       Rule
	generation uint64
	worldID    uuid.UUID
	viewport   Viewport

	ages            Overlay
	heat            Overlay
	stepsSinceDecay int

	history  *History
	settings Settings
}

// NewEngine creates an engine with an empty store and the given settings.
func NewEngine(settings Settings) *Engine {
	settings.Validate()
	e := &Engine{
		store:    NewStore(),
		rule:     DefaultRule(),
		worldID:  uuid.New(),
		history:  NewHistory(settings.HistorySize),
		settings: settings,
	}
	e.resetOverlays()
	return e
}

// Store exposes the live chunk store.
func (e *Engine) Store() *Store {
	return e.store
}

// Generation returns the generation counter.
func (e *Engine) Generation() uint64 {
	return e.generation
}

// Population returns the live-cell count.
func (e *Engine) Population() int {
	return e.store.Population()
}

// WorldID returns the identity minted for the current world.
func (e *Engine) WorldID() uuid.UUID {
	return e.worldID
}

// Rule returns the active rule.
func (e *Engine) Rule() Rule {
	return e.rule
}

// SetRule replaces the rule. On a parse failure the current rule is kept
// and the error returned.
func (e *Engine) SetRule(s string) error {
	r, err := ParseRule(s)
	if err != nil {
		return err
	}
	e.rule = r
	return nil
}

// Viewport returns the current viewport.
func (e *Engine) Viewport() Viewport {
	return e.viewport
}

// SetViewportSize changes the viewport dimensions.
func (e *Engine) SetViewportSize(w, h int) {
	e.viewport.W = max(w, 0)
	e.viewport.H = max(h, 0)
}

// SetViewportOrigin moves the viewport to the global origin (x, y).
func (e *Engine) SetViewportOrigin(x, y int) {
	e.viewport.X = x
	e.viewport.Y = y
}

// Settings returns the active settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// SetTargetFPS sets the run-loop cadence, rejecting values outside (0, 60].
func (e *Engine) SetTargetFPS(fps float64) error {
	if fps <= 0 || fps > maxFPS {
		return fmt.Errorf("fps %v out of range (0, %v]", fps, maxFPS)
	}
	e.settings.TargetFPS = fps
	return nil
}

// SetHistory enables or disables the undo ring and sizes it. Disabling
// drops all entries; re-enabling starts fresh.
func (e *Engine) SetHistory(enabled bool, size int) {
	e.settings.HistorySize = clampHistorySize(size)
	if enabled == e.settings.HistoryEnabled {
		if enabled {
			e.history.Resize(e.settings.HistorySize)
		}
		return
	}
	e.settings.HistoryEnabled = enabled
	e.history = NewHistory(e.settings.HistorySize)
}

// HistoryLen returns the number of reversible generations available.
func (e *Engine) HistoryLen() int {
	if !e.settings.HistoryEnabled {
		return 0
	}
	return e.history.Len()
}

// SetAgeTracking toggles the age overlay. Enabling seeds every live cell at
// age 1; disabling discards the overlay.
func (e *Engine) SetAgeTracking(enabled bool) {
	if enabled == e.settings.AgeTracking {
		return
	}
	e.settings.AgeTracking = enabled
	if enabled {
		e.ages = seedAges(e.store)
	} else {
		e.ages = nil
	}
}

// SetHeatmap toggles the activity heatmap overlay.
func (e *Engine) SetHeatmap(enabled bool) {
	if enabled == e.settings.Heatmap {
		return
	}
	e.settings.Heatmap = enabled
	if enabled {
		e.heat = NewOverlay()
		e.stepsSinceDecay = 0
	} else {
		e.heat = nil
	}
}

// Step advances the plane one generation, updating overlays and capturing
// history.
func (e *Engine) Step() {
	old := e.store
	next := nextStore(old, e.rule)

	// Overlays observe both sides before the old store is dropped.
	if e.settings.AgeTracking {
		e.ages = advanceAges(e.ages, next)
	}
	if e.settings.Heatmap {
		accumulateHeat(e.heat, old.chunks, next)
		e.stepsSinceDecay++
		if e.stepsSinceDecay >= heatmapDecayInterval {
			decayHeat(e.heat)
			e.stepsSinceDecay = 0
		}
	}
	if e.settings.HistoryEnabled {
		e.history.Capture(old.chunks, next, e.generation, old.Population())
	}

	e.store = next
	e.generation++
}

// stepSilent advances one generation without touching overlays or history.
// Used by jumps.
func (e *Engine) stepSilent() {
	e.store = nextStore(e.store, e.rule)
	e.generation++
}

// Reverse rewinds one generation from the history ring. It returns false
// when history is disabled or exhausted.
func (e *Engine) Reverse() bool {
	if !e.settings.HistoryEnabled {
		return false
	}
	gen, _, ok := e.history.Revert(e.store)
	if !ok {
		return false
	}
	e.generation = gen
	e.resyncOverlays()
	return true
}

// JumpTo advances the generation counter to target with silent steps,
// reporting progress at a coarse cadence. The jump cannot be interrupted.
func (e *Engine) JumpTo(target uint64, progress func(current, target uint64)) error {
	if target <= e.generation {
		return fmt.Errorf("%w: target %d, current %d", ErrCannotJumpBackward, target, e.generation)
	}
	for e.generation < target {
		e.stepSilent()
		if progress != nil && e.generation%jumpProgressInterval == 0 && e.generation < target {
			progress(e.generation, target)
		}
	}
	e.resyncOverlays()
	return nil
}

// SetCellAt edits a single cell at a global coordinate, keeping the age
// overlay in sync so a quiescent engine never shows an aged dead cell.
func (e *Engine) SetCellAt(x, y, v int) {
	e.store.SetCell(x, y, v)
	if e.settings.AgeTracking {
		if v != 0 {
			e.ages.Set(x, y, 1)
		} else {
			e.ages.Set(x, y, 0)
		}
	}
}

// SetViewportCell edits the cell at viewport index idx, counting row-major
// from the viewport origin. Indexes outside the viewport are ignored.
func (e *Engine) SetViewportCell(idx, v int) {
	if e.viewport.W <= 0 || idx < 0 || idx >= e.viewport.W*e.viewport.H {
		return
	}
	e.SetCellAt(e.viewport.X+idx%e.viewport.W, e.viewport.Y+idx/e.viewport.W, v)
}

// CellAt reads a cell at a global coordinate.
func (e *Engine) CellAt(x, y int) int {
	return e.store.CellAt(x, y)
}

// Clear empties the world: store, overlays, history, generation, and mints
// a fresh world identity.
func (e *Engine) Clear() {
	e.store.Clear()
	e.generation = 0
	e.worldID = uuid.New()
	e.history.Clear()
	e.resetOverlays()
}

// Randomize replaces the viewport rectangle with Bernoulli(density) cells.
// Cells outside the rectangle are untouched; overlays and history are
// wiped.
func (e *Engine) Randomize(density float64) {
	for y := e.viewport.Y; y < e.viewport.Y+e.viewport.H; y++ {
		for x := e.viewport.X; x < e.viewport.X+e.viewport.W; x++ {
			v := 0
			if rand.Float64() < density {
				v = 1
			}
			e.store.SetCell(x, y, v)
		}
	}
	e.history.Clear()
	e.resetOverlays()
}

// LoadCells replaces the world with the given live cells.
func (e *Engine) LoadCells(cells []Cell) {
	e.store.Clear()
	for _, c := range cells {
		e.store.SetCell(c.X, c.Y, 1)
	}
	e.generation = 0
	e.history.Clear()
	e.resetOverlays()
}

// LoadPacked replaces the world with a flat packed bitmap whose origin is
// global (0, 0).
func (e *Engine) LoadPacked(w, h int, data []uint32) {
	e.store.Clear()
	loadPacked(e.store, w, h, data)
	e.generation = 0
	e.history.Clear()
	e.resetOverlays()
}

// SeedDefault places the default pattern centered in the viewport.
func (e *Engine) SeedDefault() {
	offX := e.viewport.X + e.viewport.W/2 - 3
	offY := e.viewport.Y + e.viewport.H/2 - 1
	for _, c := range defaultPattern {
		e.store.SetCell(c.X+offX, c.Y+offY, 1)
	}
	if e.settings.AgeTracking {
		e.ages = seedAges(e.store)
	}
}

// ExportRLE encodes the whole world as RLE over its bounding box.
func (e *Engine) ExportRLE() (rle string, w, h int) {
	return EncodeRLE(cellsFromStore(e.store), e.rule.String())
}

// RenderGrid projects the viewport into a fresh packed bitmap.
func (e *Engine) RenderGrid() []uint32 {
	return renderBitmap(e.store, e.viewport)
}

// RenderAges projects the age overlay into a fresh byte array, or nil when
// age tracking is off.
func (e *Engine) RenderAges() []byte {
	if !e.settings.AgeTracking {
		return nil
	}
	return renderBytes(e.ages, e.viewport)
}

// RenderHeatmap projects the heatmap overlay into a fresh byte array, or
// nil when the heatmap is off.
func (e *Engine) RenderHeatmap() []byte {
	if !e.settings.Heatmap {
		return nil
	}
	return renderBytes(e.heat, e.viewport)
}

// Bounds returns the chunk-aligned bounding box of the world.
func (e *Engine) Bounds() Bounds {
	return e.store.Bounds()
}

// resetOverlays reinitializes whichever overlays are enabled from the
// current store.
func (e *Engine) resetOverlays() {
	e.stepsSinceDecay = 0
	if e.settings.AgeTracking {
		e.ages = seedAges(e.store)
	} else {
		e.ages = nil
	}
	if e.settings.Heatmap {
		e.heat = NewOverlay()
	} else {
		e.heat = nil
	}
}

// resyncOverlays reconciles overlays with the store after an operation that
// changed cells without stepping them, such as a reverse or a jump. Ages of
// still-live cells are kept; bytes for dead cells are dropped.
func (e *Engine) resyncOverlays() {
	if !e.settings.AgeTracking {
		return
	}
	prev := e.ages
	ages := NewOverlay()
	e.store.Each(func(cx, cy int32, c *Chunk) {
		key := chunkKey(cx, cy)
		prevPlane := prev[key]
		plane := &BytePlane{}
		for ly := 0; ly < chunkSize; ly++ {
			row := c.rows[ly]
			for row != 0 {
				lx := trailingZeros(row)
				row &= row - 1
				age := byte(1)
				if prevPlane != nil {
					if old := prevPlane.At(lx, ly); old > 0 {
						age = old
					}
				}
				plane.Set(lx, ly, age)
			}
		}
		ages[key] = plane
	})
	e.ages = ages
}
