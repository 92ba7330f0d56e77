package format

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// MagicNumber is the snapshot file format identifier "Ptri".
	MagicNumber = 0x50747269

	// CurrentVersion is the latest supported snapshot format version.
	CurrentVersion = 1

	// Compression types
	CompressionNone = 0
	CompressionZstd = 1

	// ChunkRows is the number of packed rows per chunk.
	ChunkRows = 32

	// MaxChunks bounds the chunk count a snapshot may declare.
	MaxChunks = 1000000
)

// World is the serialized form of a simulation: identity, rule, generation
// counter and every non-empty chunk.
type World struct {
	Version    int16
	WorldID    uuid.UUID
	Rule       string
	Generation uint64
	UserData   []byte
	chunks     map[int64]*Chunk
}

// NewWorld creates an empty snapshot world for the given rule.
func NewWorld(rule string) *World {
	return &World{
		Version: CurrentVersion,
		WorldID: uuid.New(),
		Rule:    rule,
		chunks:  make(map[int64]*Chunk),
	}
}

// Chunk returns the chunk at the given coordinates, or nil if not found.
func (w *World) Chunk(x, y int32) *Chunk {
	if w.chunks == nil {
		return nil
	}
	return w.chunks[chunkKey(x, y)]
}

// SetChunk sets a chunk at its coordinates. Empty chunks are discarded so
// a snapshot never carries dead tiles.
func (w *World) SetChunk(c *Chunk) {
	if c.IsEmpty() {
		return
	}
	if w.chunks == nil {
		w.chunks = make(map[int64]*Chunk)
	}
	w.chunks[chunkKey(c.X, c.Y)] = c
}

// Chunks returns all chunks in the world.
func (w *World) Chunks() []*Chunk {
	chunks := make([]*Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		chunks = append(chunks, c)
	}
	return chunks
}

// ChunkCount returns the number of chunks in the world.
func (w *World) ChunkCount() int {
	return len(w.chunks)
}

// Validate checks the snapshot against the format limits.
func (w *World) Validate() error {
	if len(w.chunks) > MaxChunks {
		return fmt.Errorf("chunk count %d exceeds maximum %d", len(w.chunks), MaxChunks)
	}
	return nil
}

// Chunk represents one 32x32 tile of cells. Row ly is packed into word ly
// with the westernmost cell in the least significant bit.
type Chunk struct {
	X    int32 // Chunk X coordinate in world space
	Y    int32 // Chunk Y coordinate in world space
	Rows [ChunkRows]uint32
}

// IsEmpty returns true if the chunk contains no live cells.
func (c *Chunk) IsEmpty() bool {
	for _, row := range c.Rows {
		if row != 0 {
			return false
		}
	}
	return true
}

// chunkKey creates a unique key for chunk coordinates.
func chunkKey(x, y int32) int64 {
	return int64(x)<<32 | int64(uint32(y))
}
