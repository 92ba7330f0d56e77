package petri

import (
	"fmt"
	"io"

	"github.com/oriumgames/petri/format"
)

// Snapshot serializes the engine's world into a snapshot and writes it to w
// behind the format header. File placement is the caller's concern; the
// core only encodes.
func (e *Engine) Snapshot(w io.Writer) error {
	return format.Write(w, worldToSnapshot(e))
}

// SnapshotWithCompression serializes the engine's world with an explicit
// compression level.
func (e *Engine) SnapshotWithCompression(w io.Writer, level format.CompressionLevel) error {
	return format.WriteWithCompression(w, worldToSnapshot(e), level)
}

// RestoreSnapshot replaces the engine's world with the snapshot read from
// r: store, rule, generation and identity. Overlays and history are wiped;
// population and bounding box are rebuilt from the loaded chunks. On error
// the engine is left unchanged.
func (e *Engine) RestoreSnapshot(r io.Reader) error {
	w, err := format.Read(r)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	rule, err := ParseRule(w.Rule)
	if err != nil {
		return fmt.Errorf("snapshot rule: %w", err)
	}

	e.store = snapshotToStore(w)
	e.rule = rule
	e.generation = w.Generation
	e.worldID = w.WorldID
	e.history.Clear()
	e.resetOverlays()
	return nil
}

// worldToSnapshot converts the engine state to its serialized form.
func worldToSnapshot(e *Engine) *format.World {
	w := format.NewWorld(e.rule.String())
	w.WorldID = e.worldID
	w.Generation = e.generation
	e.store.Each(func(cx, cy int32, c *Chunk) {
		fc := &format.Chunk{X: cx, Y: cy}
		for ly := 0; ly < chunkSize; ly++ {
			fc.Rows[ly] = c.rows[ly]
		}
		w.SetChunk(fc)
	})
	return w
}

// snapshotToStore rebuilds a chunk store from a decoded snapshot. Empty
// chunks never reach the store; the decoder already drops them.
func snapshotToStore(w *format.World) *Store {
	s := NewStore()
	for _, fc := range w.Chunks() {
		c := &Chunk{}
		for ly := 0; ly < chunkSize; ly++ {
			c.rows[ly] = fc.Rows[ly]
		}
		s.SetChunk(fc.X, fc.Y, c)
	}
	return s
}
