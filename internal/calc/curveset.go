package calc

import (
	"github.com/karim5623/hazcurve/internal/curve"
	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// CurveSet is the stage-4 product: all of one SourceSet's curves merged,
// with gmm logic-tree weights applied per curve. The set weight is NOT
// applied here; it is applied once when the CurveSet is folded into the
// Result. Cluster sets retain per-cluster curves for downstream
// disaggregation.
type CurveSet struct {
	sourceSet     *eq.SourceSet
	totals        map[gmm.Imt]*curve.Sequence
	gmmCurves     map[gmm.Imt]map[gmm.Gmm]*curve.Sequence
	clusterCurves map[gmm.Imt]map[*eq.ClusterSource]*curve.Sequence
}

// SourceSet returns the owning source set.
func (s *CurveSet) SourceSet() *eq.SourceSet { return s.sourceSet }

// Total returns the gmm-weighted total rate curve for imt, on the
// log-amplitude axis, without the set weight applied.
func (s *CurveSet) Total(imt gmm.Imt) *curve.Sequence { return s.totals[imt] }

// GmmCurve returns the weighted aggregate curve for (imt, g).
func (s *CurveSet) GmmCurve(imt gmm.Imt, g gmm.Gmm) *curve.Sequence {
	return s.gmmCurves[imt][g]
}

// ClusterCurve returns the weighted curve of one cluster source, or nil
// for non-cluster sets.
func (s *CurveSet) ClusterCurve(imt gmm.Imt, c *eq.ClusterSource) *curve.Sequence {
	byCluster, ok := s.clusterCurves[imt]
	if !ok {
		return nil
	}
	return byCluster[c]
}

// curveSetBuilder merges per-source curves into a CurveSet, applying the
// gmm weight for each source's distance regime. Single-writer; sealed
// before the consolidation barrier releases the consumer. Adding a
// HazardCurves drops its GroundMotions back-reference, so none survive
// sealing.
type curveSetBuilder struct {
	cfg   *Config
	set   *CurveSet
	built bool
}

func newCurveSetBuilder(sourceSet *eq.SourceSet, cfg *Config) *curveSetBuilder {
	cs := &CurveSet{
		sourceSet: sourceSet,
		totals:    make(map[gmm.Imt]*curve.Sequence, len(cfg.Imts())),
		gmmCurves: make(map[gmm.Imt]map[gmm.Gmm]*curve.Sequence, len(cfg.Imts())),
	}
	for _, imt := range cfg.Imts() {
		cs.totals[imt] = cfg.LogModelCurve(imt).ZeroClone()
		byGmm := make(map[gmm.Gmm]*curve.Sequence, len(sourceSet.Gmms().Gmms()))
		for _, g := range sourceSet.Gmms().Gmms() {
			byGmm[g] = cfg.LogModelCurve(imt).ZeroClone()
		}
		cs.gmmCurves[imt] = byGmm
	}
	if sourceSet.Type() == eq.ClusterType {
		cs.clusterCurves = make(map[gmm.Imt]map[*eq.ClusterSource]*curve.Sequence, len(cfg.Imts()))
		for _, imt := range cfg.Imts() {
			cs.clusterCurves[imt] = make(map[*eq.ClusterSource]*curve.Sequence)
		}
	}
	return &curveSetBuilder{cfg: cfg, set: cs}
}

// addCurves folds one source's curves in, weighting each gmm curve by
// the logic-tree weight for the source's minimum distance.
func (b *curveSetBuilder) addCurves(hc *HazardCurves) {
	b.checkOpen()
	r := hc.GroundMotions.Inputs.MinDistance()
	hc.GroundMotions = nil
	gmms := b.set.sourceSet.Gmms()
	for imt, byGmm := range hc.Curves {
		for _, g := range gmms.Gmms() {
			c, ok := byGmm[g]
			if !ok {
				continue
			}
			weighted := c.Clone().Mul(gmms.Weight(g, r))
			b.set.gmmCurves[imt][g].Add(weighted)
			b.set.totals[imt].Add(weighted)
		}
	}
}

// addClusterCurves folds one cluster's curves in, retaining the
// per-cluster weighted total.
func (b *curveSetBuilder) addClusterCurves(cc *ClusterCurves) {
	b.checkOpen()
	gmms := b.set.sourceSet.Gmms()
	for imt, byGmm := range cc.Curves {
		clusterTotal := b.cfg.LogModelCurve(imt).ZeroClone()
		for _, g := range gmms.Gmms() {
			c, ok := byGmm[g]
			if !ok {
				continue
			}
			weighted := c.Clone().Mul(gmms.Weight(g, cc.minDistance))
			b.set.gmmCurves[imt][g].Add(weighted)
			b.set.totals[imt].Add(weighted)
			clusterTotal.Add(weighted)
		}
		b.set.clusterCurves[imt][cc.Parent] = clusterTotal
	}
}

func (b *curveSetBuilder) build() *CurveSet {
	b.checkOpen()
	b.built = true
	return b.set
}

func (b *curveSetBuilder) checkOpen() {
	if b.built {
		panic("calc: curveSetBuilder reused after build")
	}
}
