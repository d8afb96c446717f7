package color

import (
	"math"
	"testing"
)

func TestSRGBToLinearMatchesExact(t *testing.T) {
	for i := 0; i < 256; i++ {
		fast := SRGBToLinear(uint8(i))
		exact := SRGBToLinearExact(uint8(i))
		if d := math.Abs(float64(fast - exact)); d > 1e-6 {
			t.Errorf("SRGBToLinear(%d) = %f, want %f", i, fast, exact)
		}
	}
}

func TestLinearToSRGBWithinOneStep(t *testing.T) {
	worst := 0
	for i := 0; i <= 1000; i++ {
		l := float32(i) / 1000
		d := int(LinearToSRGB(l)) - int(LinearToSRGBExact(l))
		if d < 0 {
			d = -d
		}
		worst = max(worst, d)
	}
	if worst > 1 {
		t.Errorf("max error %d, want <= 1", worst)
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		got := LinearToSRGB(SRGBToLinear(uint8(i)))
		if d := int(got) - i; d < -1 || d > 1 {
			t.Errorf("round trip %d -> %d", i, got)
		}
	}
}

func TestLinearToSRGBClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want uint8
	}{
		{"negative", -0.5, 0},
		{"zero", 0, 0},
		{"one", 1, 255},
		{"above one", 2, 255},
		{"nan", float32(math.NaN()), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinearToSRGB(tt.in); got != tt.want {
				t.Errorf("LinearToSRGB(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMixLinear(t *testing.T) {
	if got := MixLinear(10, 200, 0); got != 10 {
		t.Errorf("t=0: got %d, want 10", got)
	}
	if got := MixLinear(10, 200, 1); got != 200 {
		t.Errorf("t=1: got %d, want 200", got)
	}
	// Half way between black and white in linear light is brighter than 128.
	if got := MixLinear(0, 255, 0.5); got <= 128 {
		t.Errorf("midpoint = %d, want > 128", got)
	}
}

func BenchmarkMixLinear(b *testing.B) {
	var sink uint8
	for b.Loop() {
		sink ^= MixLinear(32, 220, 0.37)
	}
	_ = sink
}
