package fractile

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestEscapeDiverges(t *testing.T) {
	for _, maxIter := range []uint32{2, 10, 2000} {
		for _, exp := range []uint32{2, 3, 4, 7} {
			r := Escape(complex(-2, 1), maxIter, MinEscapeRadius, exp)
			if r.Iterations >= maxIter {
				t.Errorf("Escape(-2+1i, %d, exp %d).Iterations = %d, want < %d", maxIter, exp, r.Iterations, maxIter)
			}
			if !r.Escaped(maxIter) {
				t.Errorf("Escaped(%d) = false", maxIter)
			}
			if r.Magnitude < MinEscapeRadius {
				t.Errorf("escaped magnitude %v below radius", r.Magnitude)
			}
		}
	}
}

func TestEscapeOriginBounded(t *testing.T) {
	for _, maxIter := range []uint32{0, 1, 100, 5000} {
		for _, exp := range []uint32{2, 3, 5} {
			r := Escape(0, maxIter, MinEscapeRadius, exp)
			if r.Iterations != maxIter {
				t.Errorf("Escape(0, %d, exp %d).Iterations = %d", maxIter, exp, r.Iterations)
			}
			if r.Magnitude != 0 {
				t.Errorf("origin magnitude = %v, want 0", r.Magnitude)
			}
		}
	}
}

func TestEscapeStartsOutside(t *testing.T) {
	r := Escape(complex(-4, -4), 2000, MinEscapeRadius, 2)
	if r.Iterations != 0 {
		t.Errorf("Iterations = %d, want 0", r.Iterations)
	}
	if want := math.Hypot(4, 4); r.Magnitude != want {
		t.Errorf("Magnitude = %v, want %v", r.Magnitude, want)
	}
}

func TestEscapeKnownCount(t *testing.T) {
	// c = 1: z goes 1, 2, 5.
	r := Escape(1, 100, MinEscapeRadius, 2)
	if r.Iterations != 2 || r.Magnitude != 5 {
		t.Errorf("Escape(1) = %+v, want {2 5}", r)
	}
	// Same point with a larger radius: 5, 26.
	r = Escape(1, 100, 10, 2)
	if r.Iterations != 3 || r.Magnitude != 26 {
		t.Errorf("Escape(1, R=10) = %+v, want {3 26}", r)
	}
}

func TestPowu(t *testing.T) {
	z := complex(0.7, -0.4)
	for n := uint32(0); n <= 9; n++ {
		got := powu(z, n)
		want := cmplx.Pow(z, complex(float64(n), 0))
		if cmplx.Abs(got-want) > 1e-12 {
			t.Errorf("powu(%v, %d) = %v, want %v", z, n, got, want)
		}
	}
}

func BenchmarkEscape(b *testing.B) {
	c := complex(-0.7435, 0.1314)
	for b.Loop() {
		Escape(c, 2000, MinEscapeRadius, 2)
	}
}
