package effect

import "math/rand/v2"

// Source yields raw pseudo-random values. *rand.Rand satisfies it.
type Source interface {
	Uint32() uint32
}

// NewSource returns a seeded PCG source.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Between draws a value in [min, max). It returns min when the range is empty.
func Between(src Source, min, max uint32) uint32 {
	if max <= min {
		return min
	}
	return min + src.Uint32()%(max-min)
}

// Sequence replays a fixed list of raw values, cycling when exhausted.
// It makes the randomised effects deterministic in tests.
type Sequence struct {
	values []uint32
	next   int
}

// NewSequence creates a Sequence over values.
func NewSequence(values ...uint32) *Sequence {
	return &Sequence{values: values}
}

// Uint32 returns the next value. An empty Sequence always returns 0.
func (s *Sequence) Uint32() uint32 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
