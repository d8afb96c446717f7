package fractile

import "testing"

func TestMaskNewPending(t *testing.T) {
	m := NewMask(4)
	if m.Side() != 4 {
		t.Fatalf("Side() = %d, want 4", m.Side())
	}
	if got := m.Count(CellPending); got != 16 {
		t.Errorf("pending = %d, want 16", got)
	}
}

func TestMaskSetAt(t *testing.T) {
	m := NewMask(3)
	c := Cell{EscapeResult: EscapeResult{Iterations: 7, Magnitude: 4.5}, Kind: CellExact}
	m.Set(1, 2, c)
	if got := m.At(1, 2); got != c {
		t.Errorf("At(1, 2) = %+v, want %+v", got, c)
	}
	// Row-major: (1, 2) is the last cell of row 1.
	if got := m.Row(1)[2]; got != c {
		t.Errorf("Row(1)[2] = %+v, want %+v", got, c)
	}
	if got := m.At(2, 1); got.Kind != CellPending {
		t.Errorf("transposed cell was written: %+v", got)
	}
	if m.Count(CellExact) != 1 || m.Count(CellPending) != 8 {
		t.Errorf("counts exact=%d pending=%d", m.Count(CellExact), m.Count(CellPending))
	}
}

func TestMaskRowAliases(t *testing.T) {
	m := NewMask(2)
	m.Row(0)[1].Kind = CellFilled
	if m.At(0, 1).Kind != CellFilled {
		t.Error("Row does not alias the mask")
	}
}

func TestCellKindString(t *testing.T) {
	tests := []struct {
		kind CellKind
		want string
	}{
		{CellPending, "pending"},
		{CellExact, "exact"},
		{CellFilled, "filled"},
		{CellInterpolated, "interpolated"},
		{CellKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("CellKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
