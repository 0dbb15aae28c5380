// Package rng is the random seam of the engine. Price noise and every event
// roll draw from a Source, so production code can use a seeded PRNG while
// tests inject fixed sequences.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source yields uniform random numbers.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

// Roll reports whether a Bernoulli trial with probability p succeeds.
func Roll(src Source, p float64) bool {
	return src.Float64() < p
}

// New returns a PCG-backed source seeded with seed. Equal seeds produce
// equal sequences.
func New(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Sequence replays a fixed list of values and then repeats the last one.
// IntN maps the next value v to int(v*n), clamped to [0, n).
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence returns a Sequence over values. An empty list yields 0.5.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Fixed returns a source that always yields v.
func Fixed(v float64) *Sequence {
	return NewSequence(v)
}

func (s *Sequence) next() float64 {
	if len(s.values) == 0 {
		return 0.5
	}
	if s.pos >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

func (s *Sequence) Float64() float64 { return s.next() }

func (s *Sequence) IntN(n int) int {
	i := int(s.next() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Drawn reports how many values have been consumed.
func (s *Sequence) Drawn() int { return s.pos }
