package fractile

import (
	"fmt"
	"strings"
)

// Strategy selects how a grid whose border disagrees is resolved.
type Strategy int

const (
	// StrategySubdivide splits disagreeing regions into quadrants, evaluates
	// the dividing cross and resolves each quadrant on its own. Quadrants
	// with a uniform border are filled or interpolated; quadrants at or
	// below the minimum subdivision size are evaluated cell by cell.
	StrategySubdivide Strategy = iota

	// StrategyDirect evaluates every interior cell.
	StrategyDirect
)

// String returns the strategy name as accepted by ParseStrategy.
func (s Strategy) String() string {
	switch s {
	case StrategySubdivide:
		return "subdivide"
	case StrategyDirect:
		return "direct"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "subdivide", "":
		return StrategySubdivide, nil
	case "direct":
		return StrategyDirect, nil
	}
	return 0, fmt.Errorf("fractile: unknown strategy %q", s)
}

// ResolvePath describes how the interior of a tile was resolved.
type ResolvePath uint8

const (
	// PathInterior means the whole border stayed inside the set and the
	// interior was filled with the reference.
	PathInterior ResolvePath = iota

	// PathInterpolated means the whole border escaped after the same number
	// of steps and interior magnitudes were interpolated row by row.
	PathInterpolated

	// PathDirect means every interior cell was evaluated.
	PathDirect

	// PathSubdivided means the interior was resolved by quadrant subdivision.
	PathSubdivided
)

// String returns the path name.
func (p ResolvePath) String() string {
	switch p {
	case PathInterior:
		return "interior"
	case PathInterpolated:
		return "interpolated"
	case PathDirect:
		return "direct"
	case PathSubdivided:
		return "subdivided"
	default:
		return "unknown"
	}
}

type leafAction uint8

const (
	actionFill leafAction = iota
	actionInterpolate
	actionEvaluate
)

// leaf is a region whose interior is resolved in a single pass.
type leaf struct {
	r      region
	ref    EscapeResult
	action leafAction
}

// uniformLeaf returns the leaf for a region whose border all reached
// ref.Iterations.
func (g *grid) uniformLeaf(r region, ref EscapeResult) leaf {
	if ref.Iterations >= g.maxIterations {
		return leaf{r: r, ref: ref, action: actionFill}
	}
	return leaf{r: r, ref: ref, action: actionInterpolate}
}

// resolve completes every interior cell of the grid. uniform is the verdict
// of sampleBorder for the full grid; the border must already be in the mask.
func (g *grid) resolve(uniform bool, strategy Strategy) ResolvePath {
	n := g.mask.Side()
	full := region{top: 0, left: 0, bottom: n - 1, right: n - 1}
	ref := g.mask.At(0, 0).EscapeResult

	var (
		leaves []leaf
		path   ResolvePath
	)
	switch {
	case uniform:
		l := g.uniformLeaf(full, ref)
		leaves = append(leaves, l)
		path = PathInterpolated
		if l.action == actionFill {
			path = PathInterior
		}
	case strategy == StrategyDirect, n <= g.minSubdivide:
		leaves = append(leaves, leaf{r: full, action: actionEvaluate})
		path = PathDirect
	default:
		leaves = g.subdivide(full, leaves)
		path = PathSubdivided
	}

	g.runLeaves(leaves)
	return path
}

// subdivide appends the leaves that resolve r. Border cells of r must be
// resolved; the dividing cross is evaluated before recursing so each
// quadrant meets the same precondition.
func (g *grid) subdivide(r region, leaves []leaf) []leaf {
	if !r.hasInterior() {
		return leaves
	}
	ref := g.mask.At(r.top, r.left).EscapeResult
	if g.borderUniform(r, ref.Iterations) {
		return append(leaves, g.uniformLeaf(r, ref))
	}
	if r.width() <= g.minSubdivide || r.height() <= g.minSubdivide {
		return append(leaves, leaf{r: r, action: actionEvaluate})
	}

	midRow := (r.top + r.bottom) / 2
	midCol := (r.left + r.right) / 2
	g.evalCross(r, midRow, midCol)

	leaves = g.subdivide(region{r.top, r.left, midRow, midCol}, leaves)
	leaves = g.subdivide(region{r.top, midCol, midRow, r.right}, leaves)
	leaves = g.subdivide(region{midRow, r.left, r.bottom, midCol}, leaves)
	return g.subdivide(region{midRow, midCol, r.bottom, r.right}, leaves)
}

// evalCross evaluates the interior cells of row midRow and column midCol
// of r. The crossing cell belongs to the row.
func (g *grid) evalCross(r region, midRow, midCol int) {
	rowCells := r.width() - 2
	colCells := r.height() - 3
	g.evalCells(rowCells+colCells, func(i int) (int, int) {
		if i < rowCells {
			return midRow, r.left + 1 + i
		}
		row := r.top + 1 + (i - rowCells)
		if row >= midRow {
			row++
		}
		return row, midCol
	})
}

// unit is one interior row of one leaf.
type unit struct {
	leaf int
	row  int
}

// runLeaves resolves the interior of every leaf. Leaves are disjoint, so
// their rows are flattened into independent units and spread over the pool.
func (g *grid) runLeaves(leaves []leaf) {
	var units []unit
	for i, l := range leaves {
		for row := l.r.top + 1; row < l.r.bottom; row++ {
			units = append(units, unit{leaf: i, row: row})
		}
	}
	if len(units) == 0 {
		return
	}
	g.pool.Range(len(units), func(lo, hi int) {
		var evaluated int64
		for _, u := range units[lo:hi] {
			evaluated += g.resolveRow(&leaves[u.leaf], u.row)
		}
		if evaluated > 0 {
			g.evaluations.Add(evaluated)
		}
	})
}

// resolveRow resolves the interior cells of one leaf row and returns the
// number of Escape evaluations it made.
func (g *grid) resolveRow(l *leaf, row int) int64 {
	r := l.r
	switch l.action {
	case actionFill:
		c := Cell{EscapeResult: l.ref, Kind: CellFilled}
		for col := r.left + 1; col < r.right; col++ {
			g.mask.Set(row, col, c)
		}
		return 0

	case actionInterpolate:
		lm := g.mask.At(row, r.left).Magnitude
		rm := g.mask.At(row, r.right).Magnitude
		span := float64(r.right - r.left)
		for col := r.left + 1; col < r.right; col++ {
			t := float64(col-r.left) / span
			g.mask.Set(row, col, Cell{
				EscapeResult: EscapeResult{Iterations: l.ref.Iterations, Magnitude: lm + (rm-lm)*t},
				Kind:         CellInterpolated,
			})
		}
		return 0

	default:
		var n int64
		for col := r.left + 1; col < r.right; col++ {
			if g.mask.At(row, col).Kind == CellPending {
				g.eval(row, col)
				n++
			}
		}
		return n
	}
}
