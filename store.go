package petri

// Bounds is the chunk-aligned bounding box of a store, in chunk coordinates.
// It is approximate: the store only recomputes it after chunk removal when it
// is next requested.
type Bounds struct {
	MinCx, MaxCx int32
	MinCy, MaxCy int32
	Empty        bool
}

// Rect converts the bounds to a cell-space rectangle.
func (b Bounds) Rect() (x, y, w, h int) {
	if b.Empty {
		return 0, 0, 0, 0
	}
	x = int(b.MinCx) * chunkSize
	y = int(b.MinCy) * chunkSize
	w = int(b.MaxCx-b.MinCx+1) * chunkSize
	h = int(b.MaxCy-b.MinCy+1) * chunkSize
	return x, y, w, h
}

// Store is a sparse mapping from chunk coordinates to chunks. Every chunk it
// holds has at least one live cell; chunks are created on the first live
// write into their tile and deleted as soon as their last live cell clears.
type Store struct {
	chunks      map[int64]*Chunk
	population  int
	bounds      Bounds
	boundsDirty bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		chunks: make(map[int64]*Chunk),
		bounds: Bounds{Empty: true},
	}
}

// CellAt returns 1 if the cell at global (x, y) is alive, 0 otherwise.
// Absent chunks read as dead.
func (s *Store) CellAt(x, y int) int {
	c := s.chunks[chunkKey(chunkCoord(x), chunkCoord(y))]
	if c == nil {
		return 0
	}
	return c.Cell(localCoord(x), localCoord(y))
}

// SetCell sets the cell at global (x, y). A dead write into an absent chunk
// is a no-op and does not allocate. Clearing the last live cell of a chunk
// removes the chunk from the store.
func (s *Store) SetCell(x, y, v int) {
	cx, cy := chunkCoord(x), chunkCoord(y)
	key := chunkKey(cx, cy)
	c := s.chunks[key]
	if c == nil {
		if v == 0 {
			return
		}
		c = &Chunk{}
		s.chunks[key] = c
		s.growBounds(cx, cy)
	}
	lx, ly := localCoord(x), localCoord(y)
	prev := c.Cell(lx, ly)
	if prev == v {
		return
	}
	c.SetCell(lx, ly, v)
	if v != 0 {
		s.population++
		return
	}
	s.population--
	if c.IsEmpty() {
		delete(s.chunks, key)
		s.boundsDirty = true
	}
}

// Chunk returns the chunk at the given chunk coordinates, or nil if absent.
func (s *Store) Chunk(cx, cy int32) *Chunk {
	return s.chunks[chunkKey(cx, cy)]
}

// SetChunk installs a chunk at the given chunk coordinates, replacing any
// existing one and adjusting the population. An empty or nil chunk removes
// the entry instead; empty chunks are never retained.
func (s *Store) SetChunk(cx, cy int32, c *Chunk) {
	key := chunkKey(cx, cy)
	if prev := s.chunks[key]; prev != nil {
		s.population -= prev.Population()
	}
	if c == nil || c.IsEmpty() {
		if _, ok := s.chunks[key]; ok {
			delete(s.chunks, key)
			s.boundsDirty = true
		}
		return
	}
	s.chunks[key] = c
	s.population += c.Population()
	s.growBounds(cx, cy)
}

// ChunkCount returns the number of chunks currently held.
func (s *Store) ChunkCount() int {
	return len(s.chunks)
}

// Population returns the number of live cells across all chunks.
func (s *Store) Population() int {
	return s.population
}

// Each calls fn for every chunk in the store, in no particular order.
func (s *Store) Each(fn func(cx, cy int32, c *Chunk)) {
	for key, c := range s.chunks {
		cx, cy := splitChunkKey(key)
		fn(cx, cy, c)
	}
}

// Clear removes every chunk and resets the population.
func (s *Store) Clear() {
	s.chunks = make(map[int64]*Chunk)
	s.population = 0
	s.bounds = Bounds{Empty: true}
	s.boundsDirty = false
}

// Bounds returns the chunk-aligned bounding box, recomputing it if chunk
// removals have made the cached value stale.
func (s *Store) Bounds() Bounds {
	if s.boundsDirty {
		s.recomputeBounds()
	}
	return s.bounds
}

// Snapshot returns a map of cloned chunks keyed on chunk key, detached from
// the live store.
func (s *Store) Snapshot() map[int64]*Chunk {
	snap := make(map[int64]*Chunk, len(s.chunks))
	for key, c := range s.chunks {
		snap[key] = c.Clone()
	}
	return snap
}

// growBounds extends the cached bounding box to cover (cx, cy). Growth is
// exact, so it does not dirty the cache.
func (s *Store) growBounds(cx, cy int32) {
	if s.boundsDirty {
		return
	}
	if s.bounds.Empty {
		s.bounds = Bounds{MinCx: cx, MaxCx: cx, MinCy: cy, MaxCy: cy}
		return
	}
	if cx < s.bounds.MinCx {
		s.bounds.MinCx = cx
	}
	if cx > s.bounds.MaxCx {
		s.bounds.MaxCx = cx
	}
	if cy < s.bounds.MinCy {
		s.bounds.MinCy = cy
	}
	if cy > s.bounds.MaxCy {
		s.bounds.MaxCy = cy
	}
}

// recomputeBounds rebuilds the bounding box from the chunk keys.
func (s *Store) recomputeBounds() {
	s.boundsDirty = false
	s.bounds = Bounds{Empty: true}
	for key := range s.chunks {
		cx, cy := splitChunkKey(key)
		s.growBounds(cx, cy)
	}
}

// markBoundsDirty flags the bounding box for recomputation. Used after bulk
// chunk installs and removals, such as history reverts.
func (s *Store) markBoundsDirty() {
	s.boundsDirty = true
}

// recountPopulation rebuilds the population counter from the chunks. Used
// after operations that replace chunks wholesale.
func (s *Store) recountPopulation() {
	n := 0
	for _, c := range s.chunks {
		n += c.Population()
	}
	s.population = n
}
