package calc

import (
	"github.com/karim5623/hazcurve/internal/curve"
	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// HazardCurves is the stage-3 product for one source: per (IMT, GMM),
// the annual rate of exceedance over the log-amplitude model curve. The
// back-reference to GroundMotions is lifetime-narrow; it is dropped when
// the curves are folded into the enclosing CurveSet, before it is sealed.
type HazardCurves struct {
	GroundMotions *GroundMotions
	Curves        map[gmm.Imt]map[gmm.Gmm]*curve.Sequence
}

type hazardCurvesBuilder struct {
	hc    *HazardCurves
	built bool
}

func newHazardCurvesBuilder(gms *GroundMotions) *hazardCurvesBuilder {
	return &hazardCurvesBuilder{hc: &HazardCurves{
		GroundMotions: gms,
		Curves:        make(map[gmm.Imt]map[gmm.Gmm]*curve.Sequence),
	}}
}

func (b *hazardCurvesBuilder) addCurve(imt gmm.Imt, g gmm.Gmm, c *curve.Sequence) {
	if b.built {
		panic("calc: hazardCurvesBuilder reused after build")
	}
	byGmm, ok := b.hc.Curves[imt]
	if !ok {
		byGmm = make(map[gmm.Gmm]*curve.Sequence)
		b.hc.Curves[imt] = byGmm
	}
	byGmm[g] = c
}

func (b *hazardCurvesBuilder) build() *HazardCurves {
	if b.built {
		panic("calc: hazardCurvesBuilder reused after build")
	}
	b.built = true
	return b.hc
}

// ClusterCurves is the stage-3 product for one cluster source: per
// (IMT, GMM), the joint exceedance of the cluster's segments scaled by
// the cluster recurrence rate.
type ClusterCurves struct {
	Parent      *eq.ClusterSource
	Curves      map[gmm.Imt]map[gmm.Gmm]*curve.Sequence
	minDistance float64
}

type clusterCurvesBuilder struct {
	cc    *ClusterCurves
	built bool
}

func newClusterCurvesBuilder(gms *ClusterGroundMotions) *clusterCurvesBuilder {
	return &clusterCurvesBuilder{cc: &ClusterCurves{
		Parent:      gms.Parent,
		Curves:      make(map[gmm.Imt]map[gmm.Gmm]*curve.Sequence),
		minDistance: gms.MinDistance(),
	}}
}

func (b *clusterCurvesBuilder) addCurve(imt gmm.Imt, g gmm.Gmm, c *curve.Sequence) {
	if b.built {
		panic("calc: clusterCurvesBuilder reused after build")
	}
	byGmm, ok := b.cc.Curves[imt]
	if !ok {
		byGmm = make(map[gmm.Gmm]*curve.Sequence)
		b.cc.Curves[imt] = byGmm
	}
	byGmm[g] = c
}

func (b *clusterCurvesBuilder) build() *ClusterCurves {
	if b.built {
		panic("calc: clusterCurvesBuilder reused after build")
	}
	b.built = true
	return b.cc
}

// clusterExceedance combines per-segment exceedance curves assuming
// independent event occurrence: P = 1 − Π(1 − Pᵢ) pointwise.
func clusterExceedance(curves []*curve.Sequence) *curve.Sequence {
	out := curves[0].ZeroClone()
	ys := out.Ys()
	for i := range ys {
		ys[i] = 1
	}
	for _, c := range curves {
		cys := c.Ys()
		for i := range ys {
			ys[i] *= 1 - cys[i]
		}
	}
	for i := range ys {
		ys[i] = 1 - ys[i]
	}
	return out
}
