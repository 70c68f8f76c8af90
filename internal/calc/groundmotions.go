package calc

import (
	"math"

	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// GroundMotions is the stage-2 product: per (IMT, GMM), the log-mean and
// sigma of every input, aligned to the InputList. The table is dense;
// every gmm carries values for every configured IMT.
type GroundMotions struct {
	Inputs *InputList
	Means  map[gmm.Imt]map[gmm.Gmm][]float64
	Sigmas map[gmm.Imt]map[gmm.Gmm][]float64
}

// groundMotionsBuilder accumulates stage-2 values. Single use within the
// owning task; build seals the value before it crosses a stage boundary.
type groundMotionsBuilder struct {
	gm    *GroundMotions
	built bool
}

func newGroundMotionsBuilder(inputs *InputList, gmms []gmm.Gmm, imts []gmm.Imt) *groundMotionsBuilder {
	gm := &GroundMotions{
		Inputs: inputs,
		Means:  make(map[gmm.Imt]map[gmm.Gmm][]float64, len(imts)),
		Sigmas: make(map[gmm.Imt]map[gmm.Gmm][]float64, len(imts)),
	}
	for _, imt := range imts {
		gm.Means[imt] = make(map[gmm.Gmm][]float64, len(gmms))
		gm.Sigmas[imt] = make(map[gmm.Gmm][]float64, len(gmms))
		for _, g := range gmms {
			gm.Means[imt][g] = make([]float64, 0, len(inputs.Inputs))
			gm.Sigmas[imt][g] = make([]float64, 0, len(inputs.Inputs))
		}
	}
	return &groundMotionsBuilder{gm: gm}
}

// add appends the (mean, sigma) pair for one input. Non-finite values are
// a configuration error: the gmm contract requires finite output.
func (b *groundMotionsBuilder) add(g gmm.Gmm, imt gmm.Imt, mean, sigma float64) error {
	if b.built {
		panic("calc: groundMotionsBuilder reused after build")
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return configErr("gmm %s/%s returned non-finite mean %v", g, imt, mean)
	}
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
		return configErr("gmm %s/%s returned invalid sigma %v", g, imt, sigma)
	}
	b.gm.Means[imt][g] = append(b.gm.Means[imt][g], mean)
	b.gm.Sigmas[imt][g] = append(b.gm.Sigmas[imt][g], sigma)
	return nil
}

func (b *groundMotionsBuilder) build() *GroundMotions {
	if b.built {
		panic("calc: groundMotionsBuilder reused after build")
	}
	b.built = true
	return b.gm
}

// ClusterGroundMotions is the stage-2 product for a cluster source: the
// per-segment GroundMotions in declared order.
type ClusterGroundMotions struct {
	Parent *eq.ClusterSource
	GMs    []*GroundMotions
}

// MinDistance returns the minimum rJB across all segment inputs.
func (c *ClusterGroundMotions) MinDistance() float64 {
	min := math.Inf(1)
	for _, gm := range c.GMs {
		if gm.Inputs.minR < min {
			min = gm.Inputs.minR
		}
	}
	return min
}
