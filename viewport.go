package petri

// Viewport is the rectangular window of the plane the Presenter wants
// rendered. X and Y are the global coordinates of the top-left cell; W and H
// are in cells and may be zero.
type Viewport struct {
	X, Y int
	W, H int
}

// Stride returns the number of 32-bit words per bitmap row.
func (v Viewport) Stride() int {
	return (v.W + chunkMask) / chunkSize
}

// Contains reports whether the global cell (x, y) lies inside the viewport.
func (v Viewport) Contains(x, y int) bool {
	return x >= v.X && x < v.X+v.W && y >= v.Y && y < v.Y+v.H
}

// renderBitmap projects the viewport window of the store into a packed
// row-major bitmap. The word at row*stride + destX/32, bit destX%32, holds
// the cell at global (viewX+destX, viewY+row). The buffer is freshly
// allocated on every call.
func renderBitmap(s *Store, vp Viewport) []uint32 {
	if vp.W <= 0 || vp.H <= 0 {
		return nil
	}
	stride := vp.Stride()
	out := make([]uint32, stride*vp.H)

	minCx := chunkCoord(vp.X)
	maxCx := chunkCoord(vp.X + vp.W - 1)
	minCy := chunkCoord(vp.Y)
	maxCy := chunkCoord(vp.Y + vp.H - 1)

	for cy := minCy; cy <= maxCy; cy++ {
		for cx := minCx; cx <= maxCx; cx++ {
			c := s.Chunk(cx, cy)
			if c == nil {
				continue
			}
			blitChunk(out, stride, c, cx, cy, vp)
		}
	}
	return out
}

// blitChunk copies the intersection of one chunk with the viewport into the
// destination bitmap, stitching runs that straddle a destination word
// boundary into two words.
func blitChunk(out []uint32, stride int, c *Chunk, cx, cy int32, vp Viewport) {
	chunkX := int(cx) * chunkSize
	chunkY := int(cy) * chunkSize

	startX := max(vp.X, chunkX)
	endX := min(vp.X+vp.W, chunkX+chunkSize)
	startY := max(vp.Y, chunkY)
	endY := min(vp.Y+vp.H, chunkY+chunkSize)

	srcBitStart := startX - chunkX
	bitCount := endX - startX
	destX := startX - vp.X
	destWord := destX / chunkSize
	destBit := destX % chunkSize

	for gy := startY; gy < endY; gy++ {
		run := c.rows[gy-chunkY] >> uint(srcBitStart) & lowMask(bitCount)
		if run == 0 {
			continue
		}
		base := (gy - vp.Y) * stride
		out[base+destWord] |= run << uint(destBit)
		if destBit+bitCount > chunkSize {
			out[base+destWord+1] |= run >> uint(chunkSize-destBit)
		}
	}
}

// renderBytes projects the viewport window of an overlay into a dense byte
// array of length W*H, row-major. Absent planes read as zero.
func renderBytes(o Overlay, vp Viewport) []byte {
	if vp.W <= 0 || vp.H <= 0 {
		return nil
	}
	out := make([]byte, vp.W*vp.H)

	minCx := chunkCoord(vp.X)
	maxCx := chunkCoord(vp.X + vp.W - 1)
	minCy := chunkCoord(vp.Y)
	maxCy := chunkCoord(vp.Y + vp.H - 1)

	for cy := minCy; cy <= maxCy; cy++ {
		for cx := minCx; cx <= maxCx; cx++ {
			plane := o[chunkKey(cx, cy)]
			if plane == nil {
				continue
			}
			chunkX := int(cx) * chunkSize
			chunkY := int(cy) * chunkSize
			startX := max(vp.X, chunkX)
			endX := min(vp.X+vp.W, chunkX+chunkSize)
			startY := max(vp.Y, chunkY)
			endY := min(vp.Y+vp.H, chunkY+chunkSize)

			for gy := startY; gy < endY; gy++ {
				srcBase := (gy - chunkY) << chunkBits
				destBase := (gy-vp.Y)*vp.W - vp.X
				copy(out[destBase+startX:destBase+endX], plane.bytes[srcBase+startX-chunkX:srcBase+endX-chunkX])
			}
		}
	}
	return out
}

// lowMask returns a word with the n lowest bits set.
func lowMask(n int) uint32 {
	if n >= chunkSize {
		return ^uint32(0)
	}
	return 1<<uint(n) - 1
}
