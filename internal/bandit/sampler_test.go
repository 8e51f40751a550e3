package bandit

import (
	"math"
	"testing"
)

func TestSamplerSeededReproducibility(t *testing.T) {
	a := NewSampler(42)
	b := NewSampler(42)

	for i := 0; i < 100; i++ {
		if x, y := a.Beta(2, 5), b.Beta(2, 5); x != y {
			t.Fatalf("draw %d diverged: %v vs %v", i, x, y)
		}
	}
	if a.Float64() != b.Float64() {
		t.Error("Float64 must be reproducible under the same seed")
	}
	if a.Intn(100) != b.Intn(100) {
		t.Error("Intn must be reproducible under the same seed")
	}
}

func TestSamplerBetaRange(t *testing.T) {
	s := NewSampler(7)
	for i := 0; i < 1000; i++ {
		x := s.Beta(1, 1)
		if x < 0 || x > 1 {
			t.Fatalf("Beta(1,1) draw %v outside [0,1]", x)
		}
	}
}

func TestSamplerBetaMeanTracksParameters(t *testing.T) {
	s := NewSampler(99)

	cases := []struct {
		alpha, beta float64
	}{
		{1, 1},
		{8, 2},
		{2, 8},
		{50, 50},
	}
	const n = 20000
	for _, tc := range cases {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += s.Beta(tc.alpha, tc.beta)
		}
		got := sum / n
		want := tc.alpha / (tc.alpha + tc.beta)
		if math.Abs(got-want) > 0.02 {
			t.Errorf("Beta(%v,%v) sample mean %v, want ~%v", tc.alpha, tc.beta, got, want)
		}
	}
}

func TestSamplerBetaFractionalShape(t *testing.T) {
	s := NewSampler(5)
	// Decayed feedback produces fractional parameters; the gamma boost
	// path for shape < 1 must still return valid draws.
	for i := 0; i < 1000; i++ {
		x := s.Beta(0.7, 1.3)
		if math.IsNaN(x) || x < 0 || x > 1 {
			t.Fatalf("Beta(0.7,1.3) draw %v invalid", x)
		}
	}
}

func TestSamplerInvalidParametersDegradeToUniform(t *testing.T) {
	s := NewSampler(11)
	x := s.Beta(0, -3)
	if x < 0 || x > 1 {
		t.Errorf("degenerate parameters must still draw in [0,1], got %v", x)
	}
}
