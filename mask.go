package fractile

// CellKind records how a mask cell got its value.
type CellKind uint8

const (
	// CellPending marks a cell that has not been resolved yet.
	CellPending CellKind = iota

	// CellExact marks a cell computed by Escape.
	CellExact

	// CellFilled marks a cell copied from the reference of a uniform region
	// whose reference never escaped.
	CellFilled

	// CellInterpolated marks a cell of a uniform escaped region: the
	// iteration count is the reference's, the magnitude is interpolated
	// between the row's left and right border cells.
	CellInterpolated
)

// String returns the kind name.
func (k CellKind) String() string {
	switch k {
	case CellPending:
		return "pending"
	case CellExact:
		return "exact"
	case CellFilled:
		return "filled"
	case CellInterpolated:
		return "interpolated"
	default:
		return "unknown"
	}
}

// Cell is one mask entry.
type Cell struct {
	EscapeResult
	Kind CellKind
}

// Mask is a side x side grid of cells, one per output pixel, indexed
// [row][col]. A mask belongs to a single render call.
//
// Thread safety: Mask has no locking. Concurrent writers must touch
// disjoint cells, and readers must wait for all writers to finish.
type Mask struct {
	side  int
	cells []Cell
}

// NewMask returns a mask with every cell pending.
func NewMask(side int) *Mask {
	return &Mask{side: side, cells: make([]Cell, side*side)}
}

// Side returns the number of cells per side.
func (m *Mask) Side() int { return m.side }

// At returns the cell at (row, col).
func (m *Mask) At(row, col int) Cell {
	return m.cells[row*m.side+col]
}

// Set stores the cell at (row, col).
func (m *Mask) Set(row, col int, c Cell) {
	m.cells[row*m.side+col] = c
}

// Row returns the cells of one row. The slice aliases the mask.
func (m *Mask) Row(row int) []Cell {
	return m.cells[row*m.side : (row+1)*m.side]
}

// Count returns how many cells have the given kind.
func (m *Mask) Count(kind CellKind) int {
	n := 0
	for i := range m.cells {
		if m.cells[i].Kind == kind {
			n++
		}
	}
	return n
}
