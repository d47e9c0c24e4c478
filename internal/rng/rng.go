// internal/rng/rng.go
//
// Randomness sources for the engine.
// The engine never calls math/rand directly; every stochastic component
// (slot reels, wheel selection, deck shuffle, shop generation) draws from a
// Source so that tests and replays can inject a seeded or fixed sequence.

package rng

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source yields uniform random values. Implementations need not be
// safe for concurrent use; each engine owns its own Source.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n). n must be > 0.
	IntN(n int) int
}

// cryptoSource reads from crypto/rand and falls back to math/rand/v2 if
// the OS entropy read fails. Ordinary pseudo-randomness is all the game
// needs; the crypto default just avoids seeding concerns in production.
type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// top 53 bits -> [0, 1)
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

func (c cryptoSource) IntN(n int) int {
	return int(c.Float64() * float64(n))
}

// Default returns the production randomness source.
func Default() Source { return cryptoSource{} }

// seeded wraps a PCG generator for reproducible sequences.
type seeded struct{ r *rand.Rand }

// NewSeeded returns a deterministic Source for tests and replays.
func NewSeeded(seed uint64) Source {
	return &seeded{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seeded) Float64() float64 { return s.r.Float64() }
func (s *seeded) IntN(n int) int   { return s.r.IntN(n) }

// Fixed returns a Source that replays the given float values in order,
// wrapping around at the end. IntN scales the same values. Used by tests
// that need one exact draw.
func Fixed(vals ...float64) Source { return &fixed{vals: vals} }

type fixed struct {
	vals []float64
	i    int
}

func (f *fixed) Float64() float64 {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}

func (f *fixed) IntN(n int) int { return int(f.Float64() * float64(n)) }
