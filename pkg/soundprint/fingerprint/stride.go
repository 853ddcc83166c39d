package fingerprint

import (
	"fmt"
	"math/rand/v2"
)

// Stride decides how many samples to skip between consecutive spectral
// images. Negative values make images overlap.
type Stride interface {
	// FirstStride is the offset in samples of the first image.
	FirstStride() int
	// MinStride is the smallest value Iterator can return.
	MinStride() int
	// Iterator returns a fresh sequence of strides. Two iterators of the same
	// stride yield the same sequence.
	Iterator() func() int
}

type StaticStride struct {
	Next  int
	First int
}

func NewStaticStride(next int) StaticStride {
	return StaticStride{Next: next}
}

func NewStaticStrideWithFirst(next, first int) StaticStride {
	return StaticStride{Next: next, First: first}
}

func (s StaticStride) FirstStride() int { return s.First }
func (s StaticStride) MinStride() int   { return s.Next }

func (s StaticStride) Iterator() func() int {
	return func() int { return s.Next }
}

func (s StaticStride) String() string {
	return fmt.Sprintf("static(%d)", s.Next)
}

// RandomStride draws strides uniformly from [Min, Max] using a seeded PCG
// source, so a given seed always reproduces the same image layout.
type RandomStride struct {
	Min   int
	Max   int
	First int
	Seed  uint64
}

func NewRandomStride(min, max int, seed uint64) RandomStride {
	return RandomStride{Min: min, Max: max, Seed: seed}
}

func (s RandomStride) FirstStride() int { return s.First }
func (s RandomStride) MinStride() int   { return s.Min }

func (s RandomStride) Iterator() func() int {
	span := s.Max - s.Min
	if span <= 0 {
		return func() int { return s.Min }
	}
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	return func() int {
		return s.Min + rng.IntN(span+1)
	}
}

func (s RandomStride) String() string {
	return fmt.Sprintf("random(%d..%d, seed=%d)", s.Min, s.Max, s.Seed)
}
