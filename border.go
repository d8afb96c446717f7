package fractile

// sampleBorder evaluates every cell on the four edges of the grid and
// reports whether all of them reached ref iterations. Cell (0, 0) is the
// reference and must already be in the mask.
//
// All four edges are always evaluated, even after a mismatch, so that the
// resolver can rely on a complete border. The edges are split into
// disjoint segments (corners belong to the top and bottom rows) and
// evaluated concurrently.
func (g *grid) sampleBorder(ref uint32) bool {
	n := g.mask.Side()
	last := n - 1

	segments := [...]struct {
		count int
		at    func(i int) (row, col int)
	}{
		{n - 1, func(i int) (int, int) { return 0, i + 1 }},    // top, without (0, 0)
		{n, func(i int) (int, int) { return last, i }},         // bottom
		{n - 2, func(i int) (int, int) { return i + 1, 0 }},    // left, without corners
		{n - 2, func(i int) (int, int) { return i + 1, last }}, // right, without corners
	}

	var same [len(segments)]bool
	work := make([]func(), len(segments))
	for s, seg := range segments {
		work[s] = func() {
			uniform := true
			for i := range seg.count {
				if g.eval(seg.at(i)).Iterations != ref {
					uniform = false
				}
			}
			same[s] = uniform
			g.evaluations.Add(int64(seg.count))
		}
	}
	g.pool.ExecuteAll(work)

	for _, ok := range same {
		if !ok {
			return false
		}
	}
	return true
}

// borderUniform reports whether every border cell of r, already resolved in
// the mask, has ref iterations.
func (g *grid) borderUniform(r region, ref uint32) bool {
	for col := r.left; col <= r.right; col++ {
		if g.mask.At(r.top, col).Iterations != ref || g.mask.At(r.bottom, col).Iterations != ref {
			return false
		}
	}
	for row := r.top + 1; row < r.bottom; row++ {
		if g.mask.At(row, r.left).Iterations != ref || g.mask.At(row, r.right).Iterations != ref {
			return false
		}
	}
	return true
}
