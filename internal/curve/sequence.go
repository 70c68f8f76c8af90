// Package curve provides the XY sequence type used for hazard curves.
//
// A Sequence pairs an immutable, strictly increasing x-axis with a mutable
// y-vector. All curves derived from the same model curve share the backing
// x-slice, so axis equality checks are cheap and accumulation is y-addition
// only.
package curve

import (
	"errors"
	"fmt"
	"math"
)

// Sequence is an XY sequence with a shared immutable x-axis.
type Sequence struct {
	xs []float64
	ys []float64
}

// New creates a zero-y Sequence over the supplied x-values. The x-values
// must be finite and strictly increasing; the slice is copied.
func New(xs []float64) (*Sequence, error) {
	if len(xs) < 2 {
		return nil, errors.New("curve: at least two x-values required")
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("curve: non-finite x-value at index %d", i)
		}
		if i > 0 && x <= xs[i-1] {
			return nil, fmt.Errorf("curve: x-values not strictly increasing at index %d", i)
		}
	}
	cp := make([]float64, len(xs))
	copy(cp, xs)
	return &Sequence{xs: cp, ys: make([]float64, len(xs))}, nil
}

// MustNew is New for statically known axes; it panics on error.
func MustNew(xs []float64) *Sequence {
	s, err := New(xs)
	if err != nil {
		panic(err)
	}
	return s
}

// Clone returns a copy of s sharing the x-axis.
func (s *Sequence) Clone() *Sequence {
	ys := make([]float64, len(s.ys))
	copy(ys, s.ys)
	return &Sequence{xs: s.xs, ys: ys}
}

// ZeroClone returns a zero-y copy of s sharing the x-axis.
func (s *Sequence) ZeroClone() *Sequence {
	return &Sequence{xs: s.xs, ys: make([]float64, len(s.ys))}
}

// Len returns the number of points.
func (s *Sequence) Len() int { return len(s.xs) }

// X returns the x-value at index i.
func (s *Sequence) X(i int) float64 { return s.xs[i] }

// Y returns the y-value at index i.
func (s *Sequence) Y(i int) float64 { return s.ys[i] }

// SetY sets the y-value at index i.
func (s *Sequence) SetY(i int, v float64) { s.ys[i] = v }

// Xs returns the backing x-slice. Callers must not modify it.
func (s *Sequence) Xs() []float64 { return s.xs }

// Ys returns the backing y-slice. Mutations are visible to the Sequence.
func (s *Sequence) Ys() []float64 { return s.ys }

// SameAxis reports whether s and o share an identical x-axis.
func (s *Sequence) SameAxis(o *Sequence) bool {
	if &s.xs[0] == &o.xs[0] && len(s.xs) == len(o.xs) {
		return true
	}
	if len(s.xs) != len(o.xs) {
		return false
	}
	for i := range s.xs {
		if s.xs[i] != o.xs[i] {
			return false
		}
	}
	return true
}

// Add adds o's y-values into s pointwise and returns s.
// It panics if the axes differ; mixing axes is a programming error.
func (s *Sequence) Add(o *Sequence) *Sequence {
	if !s.SameAxis(o) {
		panic("curve: sequence axes differ")
	}
	for i := range s.ys {
		s.ys[i] += o.ys[i]
	}
	return s
}

// Mul scales every y-value by v and returns s.
func (s *Sequence) Mul(v float64) *Sequence {
	for i := range s.ys {
		s.ys[i] *= v
	}
	return s
}

// MapY sets each y-value to f(x) and returns s.
func (s *Sequence) MapY(f func(x float64) float64) *Sequence {
	for i, x := range s.xs {
		s.ys[i] = f(x)
	}
	return s
}

// Equal reports whether s and o have identical axes and y-values.
func (s *Sequence) Equal(o *Sequence) bool {
	if !s.SameAxis(o) {
		return false
	}
	for i := range s.ys {
		if s.ys[i] != o.ys[i] {
			return false
		}
	}
	return true
}
