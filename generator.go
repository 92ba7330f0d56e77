package petri

// The generator advances the whole plane by one application of the rule. It
// works chunk by chunk: for every chunk that could hold a live cell in the
// next generation it assembles, per row, eight 32-bit neighbor vectors and
// feeds them through a carry-save adder tree, producing the per-lane neighbor
// count as four bitslice words. All 32 cells of a row are decided in a
// handful of word operations.

// nextStore computes one generation of rule over cur and returns a fresh
// store. Chunks of the input are borrowed read-only; the result shares no
// chunk memory with cur.
func nextStore(cur *Store, rule Rule) *Store {
	// The work set is the union of the 3x3 chunk neighborhoods of every
	// occupied chunk. No chunk outside it can gain a live cell.
	work := make(map[int64]struct{}, len(cur.chunks)*2)
	for key := range cur.chunks {
		cx, cy := splitChunkKey(key)
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				work[chunkKey(cx+dx, cy+dy)] = struct{}{}
			}
		}
	}

	next := NewStore()
	for key := range work {
		cx, cy := splitChunkKey(key)
		c := stepChunk(cur, cx, cy, rule)
		if c != nil {
			next.SetChunk(cx, cy, c)
		}
	}
	return next
}

// stepChunk computes the next generation of the chunk at (cx, cy), reading
// the 3x3 chunk neighborhood from cur. Missing chunks read as all-dead. It
// returns nil when the resulting chunk would be empty.
func stepChunk(cur *Store, cx, cy int32, rule Rule) *Chunk {
	center := cur.Chunk(cx, cy)
	north := cur.Chunk(cx, cy-1)
	south := cur.Chunk(cx, cy+1)
	west := cur.Chunk(cx-1, cy)
	east := cur.Chunk(cx+1, cy)
	northwest := cur.Chunk(cx-1, cy-1)
	northeast := cur.Chunk(cx+1, cy-1)
	southwest := cur.Chunk(cx-1, cy+1)
	southeast := cur.Chunk(cx+1, cy+1)

	var out *Chunk
	for y := 0; y < chunkSize; y++ {
		row := rowOf(center, y)

		// Rows above and below, crossing into the vertical neighbors at the
		// chunk edge.
		var up, down uint32
		if y > 0 {
			up = rowOf(center, y-1)
		} else {
			up = rowOf(north, chunkSize-1)
		}
		if y < chunkSize-1 {
			down = rowOf(center, y+1)
		} else {
			down = rowOf(south, 0)
		}

		// Same-row words of the horizontal neighbors, used to pull edge bits
		// into the shifted vectors.
		curW := rowOf(west, y)
		curE := rowOf(east, y)
		var upW, upE, downW, downE uint32
		if y > 0 {
			upW = rowOf(west, y-1)
			upE = rowOf(east, y-1)
		} else {
			upW = rowOf(northwest, chunkSize-1)
			upE = rowOf(northeast, chunkSize-1)
		}
		if y < chunkSize-1 {
			downW = rowOf(west, y+1)
			downE = rowOf(east, y+1)
		} else {
			downW = rowOf(southwest, 0)
			downE = rowOf(southeast, 0)
		}

		// Eight neighbor vectors aligned with the center row. Shifting left
		// moves a row one cell east in lane space; the vacated lane 0 is
		// filled from bit 31 of the west word, and vice versa.
		n := up
		s := down
		w := row<<1 | curW>>31
		e := row>>1 | curE<<31
		nw := up<<1 | upW>>31
		ne := up>>1 | upE<<31
		sw := down<<1 | downW>>31
		se := down>>1 | downE<<31

		nextRow := applyRule(row, rule, neighborCounts(n, s, w, e, nw, ne, sw, se))
		if nextRow != 0 {
			if out == nil {
				out = &Chunk{}
			}
			out.rows[y] = nextRow
		}
	}
	return out
}

// rowOf reads a packed row from a chunk that may be absent.
func rowOf(c *Chunk, y int) uint32 {
	if c == nil {
		return 0
	}
	return c.rows[y]
}

// counts holds the per-lane neighbor count of a row as four bitslice words.
// For lane i, the neighbor count in 0..8 is
// total3<<3 | total2<<2 | total1<<1 | total0 at bit i.
type counts struct {
	total0, total1, total2, total3 uint32
}

// neighborCounts sums the eight neighbor vectors per lane using a carry-save
// adder tree: four half adders, then a compression of the sum and carry
// planes into the four result bits. No lane ever borrows from its neighbors.
func neighborCounts(n, s, w, e, nw, ne, sw, se uint32) counts {
	// First layer: pairwise half adders.
	s0, c0 := n^s, n&s
	s1, c1 := w^e, w&e
	s2, c2 := nw^sw, nw&sw
	s3, c3 := ne^se, ne&se

	// Combine the four sum planes.
	s01, c01 := s0^s1, s0&s1
	s23, c23 := s2^s3, s2&s3
	total0 := s01 ^ s23
	carrySRaw := s01 & s23

	// Weight-2 plane: carries of the sum combination plus the half-adder
	// carries.
	sumA := c01 ^ c23 ^ carrySRaw
	carryA := majority3(c01, c23, carrySRaw)
	c01x, c01a := c0^c1, c0&c1
	c23x, c23a := c2^c3, c2&c3
	sumB := c01x ^ c23x
	total1 := sumA ^ sumB
	carryAB := sumA & sumB

	// Weight-4 plane: a full adder over its three inputs. c01a and c23a are
	// both set exactly when all eight neighbors are alive, so their shared
	// carry is the count-8 bit and must not collapse into the weight-4 sum.
	carryB := c01x&c23x ^ c01a ^ c23a
	carryB8 := majority3(c01x&c23x, c01a, c23a)

	// Weight-4 and weight-8 planes.
	total2 := carryA ^ carryB ^ carryAB
	total3 := majority3(carryA, carryB, carryAB) | carryB8

	return counts{total0: total0, total1: total1, total2: total2, total3: total3}
}

// majority3 returns, per lane, the majority vote of three bits.
func majority3(a, b, c uint32) uint32 {
	return a&b | a&c | b&c
}

// applyRule decodes the nine neighbor-count masks from the bitslice counts
// and applies the birth/survival predicates to the center row.
func applyRule(row uint32, rule Rule, ct counts) uint32 {
	nt0, nt1, nt2, nt3 := ^ct.total0, ^ct.total1, ^ct.total2, ^ct.total3

	// countMask[k] has a bit set in every lane whose neighbor count is
	// exactly k. Count 8 is the only one with total3 set; masking the low
	// bits keeps it from aliasing count 0.
	countMask := [9]uint32{
		nt3 & nt2 & nt1 & nt0,
		nt3 & nt2 & nt1 & ct.total0,
		nt3 & nt2 & ct.total1 & nt0,
		nt3 & nt2 & ct.total1 & ct.total0,
		nt3 & ct.total2 & nt1 & nt0,
		nt3 & ct.total2 & nt1 & ct.total0,
		nt3 & ct.total2 & ct.total1 & nt0,
		nt3 & ct.total2 & ct.total1 & ct.total0,
		ct.total3 & nt2 & nt1 & nt0,
	}

	var birthMask, survivalMask uint32
	for k := 0; k <= 8; k++ {
		if rule.Birth[k] {
			birthMask |= countMask[k]
		}
		if rule.Survival[k] {
			survivalMask |= countMask[k]
		}
	}
	return ^row&birthMask | row&survivalMask
}
