package eq

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/karim5623/hazcurve/internal/gmm"
)

// weightTolerance bounds the allowed deviation of a weight sum from 1.
const weightTolerance = 1e-9

// GmmSet is the ground-motion logic tree of a SourceSet: weighted model
// maps for the near-field (R ≤ cutoff) and far-field (R > cutoff)
// distance regimes, with a linear interpolation band straddling the
// cutoff. Band width is a property of the set, not a global constant.
type GmmSet struct {
	near   map[gmm.Gmm]float64
	far    map[gmm.Gmm]float64
	cutoff float64
	band   float64
	gmms   []gmm.Gmm
}

// GmmSetBuilder assembles a GmmSet. Single use; Build seals the set.
type GmmSetBuilder struct {
	set   *GmmSet
	built bool
}

// NewGmmSetBuilder returns a builder with no distance cutoff: the near
// weights apply at all distances unless Far and Cutoff are set.
func NewGmmSetBuilder() *GmmSetBuilder {
	return &GmmSetBuilder{set: &GmmSet{cutoff: math.Inf(1)}}
}

// Near sets the weight map for R ≤ cutoff.
func (b *GmmSetBuilder) Near(weights map[gmm.Gmm]float64) *GmmSetBuilder {
	b.checkOpen()
	b.set.near = copyWeights(weights)
	return b
}

// Far sets the weight map for R > cutoff.
func (b *GmmSetBuilder) Far(weights map[gmm.Gmm]float64) *GmmSetBuilder {
	b.checkOpen()
	b.set.far = copyWeights(weights)
	return b
}

// Cutoff sets the distance, in kilometers, separating the regimes.
func (b *GmmSetBuilder) Cutoff(r float64) *GmmSetBuilder {
	b.checkOpen()
	b.set.cutoff = r
	return b
}

// Band sets the width, in kilometers, of the interpolation band centered
// on the cutoff.
func (b *GmmSetBuilder) Band(w float64) *GmmSetBuilder {
	b.checkOpen()
	b.set.band = w
	return b
}

// Build validates and seals the GmmSet.
func (b *GmmSetBuilder) Build() (*GmmSet, error) {
	b.checkOpen()
	b.built = true
	s := b.set
	if len(s.near) == 0 {
		return nil, errors.New("gmm set has no near-field weights")
	}
	if s.far == nil {
		s.far = s.near
	}
	if err := checkWeightSum("near", s.near); err != nil {
		return nil, err
	}
	if err := checkWeightSum("far", s.far); err != nil {
		return nil, err
	}
	if s.band < 0 {
		return nil, fmt.Errorf("gmm set interpolation band %v is negative", s.band)
	}
	ids := make(map[gmm.Gmm]struct{}, len(s.near)+len(s.far))
	for g := range s.near {
		ids[g] = struct{}{}
	}
	for g := range s.far {
		ids[g] = struct{}{}
	}
	s.gmms = make([]gmm.Gmm, 0, len(ids))
	for g := range ids {
		s.gmms = append(s.gmms, g)
	}
	sort.Slice(s.gmms, func(i, j int) bool { return s.gmms[i] < s.gmms[j] })
	return s, nil
}

func (b *GmmSetBuilder) checkOpen() {
	if b.built {
		panic("eq: GmmSetBuilder reused after Build")
	}
}

// Gmms returns the union of model identifiers across both regimes, in
// deterministic sorted order.
func (s *GmmSet) Gmms() []gmm.Gmm { return s.gmms }

// Weight returns the logic-tree weight of g for a source at distance r.
// Inside the interpolation band the near and far weights are blended
// linearly.
func (s *GmmSet) Weight(g gmm.Gmm, r float64) float64 {
	lo := s.cutoff - s.band/2
	hi := s.cutoff + s.band/2
	switch {
	case r <= lo:
		return s.near[g]
	case r >= hi:
		return s.far[g]
	default:
		f := (r - s.cutoff + s.band/2) / s.band
		return s.near[g]*(1-f) + s.far[g]*f
	}
}

func copyWeights(w map[gmm.Gmm]float64) map[gmm.Gmm]float64 {
	cp := make(map[gmm.Gmm]float64, len(w))
	for k, v := range w {
		cp[k] = v
	}
	return cp
}

func checkWeightSum(regime string, w map[gmm.Gmm]float64) error {
	sum := 0.0
	for g, v := range w {
		if v < 0 {
			return fmt.Errorf("gmm %s has negative %s-field weight %v", g, regime, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%s-field gmm weights sum to %v, not 1", regime, sum)
	}
	return nil
}
