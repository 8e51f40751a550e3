package bandit

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Sampler is the pseudorandom source behind attribute selection. It is
// an interface so tests can pin exact draws; the production
// implementation is seedable for reproducible runs.
type Sampler interface {
	// Beta draws one sample from Beta(alpha, beta).
	Beta(alpha, beta float64) float64
	// Float64 draws uniformly from [0,1).
	Float64() float64
	// Intn draws uniformly from [0,n).
	Intn(n int) int
}

// randSampler implements Sampler on math/rand, synthesizing Beta
// variates from two Gamma draws (Marsaglia–Tsang).
type randSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a sampler seeded with the given value. A zero seed
// falls back to the clock.
func NewSampler(seed int64) Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randSampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *randSampler) Beta(alpha, beta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if alpha <= 0 {
		alpha = 1
	}
	if beta <= 0 {
		beta = 1
	}
	g1 := s.gamma(alpha)
	g2 := s.gamma(beta)
	if g1+g2 == 0 {
		return 0.5
	}
	return g1 / (g1 + g2)
}

func (s *randSampler) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *randSampler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// gamma draws from Gamma(shape, 1) via Marsaglia–Tsang. Shapes below 1
// use the boost Gamma(a) = Gamma(a+1) * U^(1/a).
func (s *randSampler) gamma(shape float64) float64 {
	if shape < 1 {
		u := s.rng.Float64()
		for u == 0 {
			u = s.rng.Float64()
		}
		return s.gamma(shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
