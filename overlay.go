package petri

const (
	// heatmapBoost is added to a cell's activity counter when its state
	// flips, saturating at 255.
	heatmapBoost = 5
	// heatmapDecayInterval is the number of steps between heatmap decay
	// passes.
	heatmapDecayInterval = 10
)

// BytePlane is a 32x32 tile of per-cell bytes parallel to a Chunk. The byte
// for local (lx, ly) is held at ly*32 + lx.
type BytePlane struct {
	bytes [chunkSize * chunkSize]byte
}

// At returns the byte for local (lx, ly).
func (p *BytePlane) At(lx, ly int) byte {
	return p.bytes[ly<<chunkBits|lx]
}

// Set writes the byte for local (lx, ly).
func (p *BytePlane) Set(lx, ly int, v byte) {
	p.bytes[ly<<chunkBits|lx] = v
}

// IsEmpty returns true if every byte in the plane is zero.
func (p *BytePlane) IsEmpty() bool {
	for _, b := range p.bytes {
		if b != 0 {
			return false
		}
	}
	return true
}

// Overlay is a sparse mapping from chunk coordinates to byte planes. Planes
// follow the same lifecycle as chunks: created on first non-zero write,
// removed when they hold only zeros.
type Overlay map[int64]*BytePlane

// NewOverlay creates an empty overlay.
func NewOverlay() Overlay {
	return make(Overlay)
}

// Plane returns the plane for the given chunk key, or nil if absent.
func (o Overlay) Plane(key int64) *BytePlane {
	return o[key]
}

// At returns the byte for the cell at global (x, y); absent planes read
// as zero.
func (o Overlay) At(x, y int) byte {
	p := o[chunkKey(chunkCoord(x), chunkCoord(y))]
	if p == nil {
		return 0
	}
	return p.At(localCoord(x), localCoord(y))
}

// Set writes the byte for the cell at global (x, y). Writing zero into an
// absent plane is a no-op; a plane whose last non-zero byte clears is
// removed.
func (o Overlay) Set(x, y int, v byte) {
	key := chunkKey(chunkCoord(x), chunkCoord(y))
	p := o[key]
	if p == nil {
		if v == 0 {
			return
		}
		p = &BytePlane{}
		o[key] = p
	}
	p.Set(localCoord(x), localCoord(y), v)
	if v == 0 && p.IsEmpty() {
		delete(o, key)
	}
}

// advanceAges derives the age overlay for the generation held in next from
// the previous overlay: every live cell ages by one, saturating at 255, and
// dead cells carry no byte. The result is freshly allocated.
func advanceAges(prev Overlay, next *Store) Overlay {
	ages := NewOverlay()
	next.Each(func(cx, cy int32, c *Chunk) {
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
						age = saturatingAdd(old, 1)
					}
				}
				plane.Set(lx, ly, age)
			}
		}
		ages[key] = plane
	})
	return ages
}

// seedAges builds an age overlay assigning age 1 to every live cell of the
// store. Used when age tracking is switched on mid-run.
func seedAges(s *Store) Overlay {
	ages := NewOverlay()
	s.Each(func(cx, cy int32, c *Chunk) {
		plane := &BytePlane{}
		for ly := 0; ly < chunkSize; ly++ {
			row := c.rows[ly]
			for row != 0 {
				lx := trailingZeros(row)
				row &= row - 1
				plane.Set(lx, ly, 1)
			}
		}
		ages[chunkKey(cx, cy)] = plane
	})
	return ages
}

// accumulateHeat adds the boost to the activity counter of every cell whose
// state differs between old and new, saturating at 255. Planes are created
// on demand.
func accumulateHeat(heat Overlay, old map[int64]*Chunk, next *Store) {
	keys := make(map[int64]struct{}, len(old)+len(next.chunks))
	for key := range old {
		keys[key] = struct{}{}
	}
	for key := range next.chunks {
		keys[key] = struct{}{}
	}
	for key := range keys {
		oldChunk := old[key]
		newChunk := next.chunks[key]
		plane := heat[key]
		for ly := 0; ly < chunkSize; ly++ {
			flipped := rowOf(oldChunk, ly) ^ rowOf(newChunk, ly)
			for flipped != 0 {
				lx := trailingZeros(flipped)
				flipped &= flipped - 1
				if plane == nil {
					plane = &BytePlane{}
					heat[key] = plane
				}
				plane.Set(lx, ly, saturatingAdd(plane.At(lx, ly), heatmapBoost))
			}
		}
	}
}

// decayHeat subtracts one from every positive activity counter and removes
// planes that end up all-zero.
func decayHeat(heat Overlay) {
	for key, plane := range heat {
		for i := range plane.bytes {
			if plane.bytes[i] > 0 {
				plane.bytes[i]--
			}
		}
		if plane.IsEmpty() {
			delete(heat, key)
		}
	}
}

// saturatingAdd adds two bytes, clamping at 255.
func saturatingAdd(a, b byte) byte {
	sum := int(a) + int(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}
