package format

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// DecodeWorld decodes a World from a reader.
func DecodeWorld(r io.Reader) (*World, error) {
	rd := newReader(r)

	w := &World{
		Version: CurrentVersion,
		chunks:  make(map[int64]*Chunk),
	}

	// Read identity
	idStr, err := rd.ReadString()
	if err != nil {
		return nil, fmt.Errorf("read world id: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse world id %q: %w", idStr, err)
	}
	w.WorldID = id

	// Read rule
	rule, err := rd.ReadString()
	if err != nil {
		return nil, fmt.Errorf("read rule: %w", err)
	}
	w.Rule = rule

	// Read generation counter
	gen, err := rd.ReadUInt64()
	if err != nil {
		return nil, fmt.Errorf("read generation: %w", err)
	}
	w.Generation = gen

	// Read user data
	userData, err := rd.ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("read user data: %w", err)
	}
	w.UserData = userData

	// Read chunk count
	chunkCount, err := rd.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("read chunk count: %w", err)
	}
	if chunkCount < 0 || chunkCount > MaxChunks {
		return nil, fmt.Errorf("invalid chunk count: %d", chunkCount)
	}

	// Read chunks
	for i := range chunkCount {
		chunk, err := decodeChunk(rd)
		if err != nil {
			return nil, fmt.Errorf("decode chunk %d (total: %d): %w", i, chunkCount, err)
		}
		w.SetChunk(chunk)
	}

	return w, nil
}

// decodeChunk decodes a Chunk from a reader.
func decodeChunk(rd *reader) (*Chunk, error) {
	chunk := &Chunk{}

	// Read coordinates
	x, err := rd.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("read x: %w", err)
	}
	y, err := rd.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("read y: %w", err)
	}
	chunk.X = x
	chunk.Y = y

	// Read packed rows
	for i := range ChunkRows {
		row, err := rd.ReadUInt32()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}
		chunk.Rows[i] = row
	}

	return chunk, nil
}
