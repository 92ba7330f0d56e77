package petri

import "testing"

func TestStoreSetGet(t *testing.T) {
	s := NewStore()
	if s.CellAt(100, 100) != 0 {
		t.Fatal("empty store reads live")
	}

	s.SetCell(100, 100, 1)
	if s.CellAt(100, 100) != 1 {
		t.Fatal("set cell does not read back")
	}
	if s.ChunkCount() != 1 || s.Population() != 1 {
		t.Fatalf("chunks=%d pop=%d, want 1/1", s.ChunkCount(), s.Population())
	}

	// Toggling the only live cell off must garbage-collect the chunk.
	s.SetCell(100, 100, 0)
	if s.ChunkCount() != 0 {
		t.Fatalf("chunk survived after its last cell cleared: %d", s.ChunkCount())
	}
	if s.Population() != 0 {
		t.Fatalf("population = %d, want 0", s.Population())
	}
}

func TestStoreDeadWriteDoesNotAllocate(t *testing.T) {
	s := NewStore()
	s.SetCell(50, -50, 0)
	if s.ChunkCount() != 0 {
		t.Fatal("dead write into an absent chunk allocated a chunk")
	}
}

func TestStoreNegativeCoordinates(t *testing.T) {
	s := NewStore()
	s.SetCell(-1, -1, 1)
	if s.CellAt(-1, -1) != 1 {
		t.Fatal("cell at (-1, -1) does not read back")
	}
	c := s.Chunk(-1, -1)
	if c == nil {
		t.Fatal("cell (-1, -1) should live in chunk (-1, -1)")
	}
	if c.Cell(31, 31) != 1 {
		t.Fatal("cell (-1, -1) should map to local (31, 31)")
	}
}

func TestStorePopulationInvariant(t *testing.T) {
	s := NewStore()
	coords := [][2]int{{0, 0}, {1, 1}, {-40, 3}, {200, -7}, {0, 0}, {31, 31}, {32, 0}}
	for _, c := range coords {
		s.SetCell(c[0], c[1], 1)
	}
	want := 0
	s.Each(func(cx, cy int32, c *Chunk) {
		want += c.Population()
	})
	if s.Population() != want {
		t.Fatalf("tracked population %d != summed popcount %d", s.Population(), want)
	}
}

func TestStoreBounds(t *testing.T) {
	s := NewStore()
	if !s.Bounds().Empty {
		t.Fatal("empty store should report empty bounds")
	}

	s.SetCell(0, 0, 1)
	s.SetCell(100, -70, 1)
	b := s.Bounds()
	if b.Empty {
		t.Fatal("bounds empty with live cells")
	}
	if b.MinCx != 0 || b.MaxCx != 3 || b.MinCy != -3 || b.MaxCy != 0 {
		t.Fatalf("bounds = %+v", b)
	}
	x, y, w, h := b.Rect()
	if x != 0 || y != -96 || w != 128 || h != 128 {
		t.Fatalf("rect = (%d, %d, %d, %d)", x, y, w, h)
	}

	// Removing the far chunk must shrink the box after recompute.
	s.SetCell(100, -70, 0)
	b = s.Bounds()
	if b.MinCx != 0 || b.MaxCx != 0 || b.MinCy != 0 || b.MaxCy != 0 {
		t.Fatalf("bounds after removal = %+v", b)
	}
}

func TestStoreSetChunkRejectsEmpty(t *testing.T) {
	s := NewStore()
	s.SetChunk(2, 3, &Chunk{})
	if s.ChunkCount() != 0 {
		t.Fatal("empty chunk was retained")
	}

	c := &Chunk{}
	c.SetCell(0, 0, 1)
	s.SetChunk(2, 3, c)
	if s.Population() != 1 || s.CellAt(64, 96) != 1 {
		t.Fatal("chunk install did not land at (64, 96)")
	}
	s.SetChunk(2, 3, nil)
	if s.ChunkCount() != 0 || s.Population() != 0 {
		t.Fatal("nil install did not remove the chunk")
	}
}
