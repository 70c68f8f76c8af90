package calc

import (
	"fmt"
	"math"

	"github.com/karim5623/hazcurve/internal/curve"
	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/gmm"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// The stage transforms below are pure functions of their inputs and the
// captured site/config. Each stage owns its scratch buffers; nothing here
// is shared across tasks.

// sourceToInputs expands a source into one ground-motion input per
// rupture, in declared order. Distances and the hypocentral depth are
// computed once here and never recomputed downstream. Ruptures beyond
// the distance cutoff are still emitted; filtering is a source-set
// pre-filter only.
func sourceToInputs(src eq.Source, site Site) (*InputList, error) {
	ruptures := src.Ruptures()
	list := &InputList{
		SourceName: src.Name(),
		Inputs:     make([]gmm.Input, 0, len(ruptures)),
		minR:       math.Inf(1),
	}
	for i, rup := range ruptures {
		surface := rup.Surface
		d := surface.DistanceTo(site.Location)
		if !finite(d.RJB) || !finite(d.RRup) || !finite(d.RX) {
			return nil, fmt.Errorf(
				"source %s rupture %d: non-finite distance (rJB=%v rRup=%v rX=%v)",
				src.Name(), i, d.RJB, d.RRup, d.RX)
		}
		dip := surface.Dip()
		width := surface.Width()
		zTop := surface.Depth()
		zHyp := eq.HypocentralDepth(dip, width, zTop)

		list.Inputs = append(list.Inputs, gmm.Input{
			Rate:       rup.Rate,
			Mag:        rup.Mag,
			RJB:        d.RJB,
			RRup:       d.RRup,
			RX:         d.RX,
			Dip:        dip,
			Width:      width,
			ZTop:       zTop,
			ZHyp:       zHyp,
			Rake:       rup.Rake,
			Vs30:       site.Vs30,
			VsInferred: site.VsInferred,
			Z1p0:       site.Z1p0,
			Z2p5:       site.Z2p5,
		})
		if d.RJB < list.minR {
			list.minR = d.RJB
		}
	}
	return list, nil
}

// inputsToGroundMotions evaluates every (gmm, imt) pair on every input,
// producing the dense aligned mean/sigma tables.
func inputsToGroundMotions(
	inputs *InputList,
	instances gmm.Instances,
	gmms []gmm.Gmm,
	imts []gmm.Imt) (*GroundMotions, error) {

	builder := newGroundMotionsBuilder(inputs, gmms, imts)
	for _, g := range gmms {
		for _, imt := range imts {
			model, err := instances.Get(g, imt)
			if err != nil {
				return nil, configErr("%v", err)
			}
			for _, in := range inputs.Inputs {
				mean, sigma := model.Calc(in)
				if err := builder.add(g, imt, mean, sigma); err != nil {
					return nil, err
				}
			}
		}
	}
	return builder.build(), nil
}

// groundMotionsToCurves integrates the exceedance model over the
// log-amplitude model curve for every (imt, gmm), scaling each rupture's
// exceedance by its rate and summing across ruptures. The y-values are
// annual rates at this stage, not probabilities.
func groundMotionsToCurves(gms *GroundMotions, cfg *Config) *HazardCurves {
	builder := newHazardCurvesBuilder(gms)
	for _, imt := range cfg.Imts() {
		modelCurve := cfg.LogModelCurve(imt)
		utilCurve := modelCurve.ZeroClone()

		byGmmMeans := gms.Means[imt]
		byGmmSigmas := gms.Sigmas[imt]
		for g, means := range byGmmMeans {
			sigmas := byGmmSigmas[g]
			gmmCurve := modelCurve.ZeroClone()
			for i := range means {
				cfg.Exceedance().Exceedance(
					means[i], sigmas[i], cfg.Truncation(), imt, utilCurve)
				utilCurve.Mul(gms.Inputs.Inputs[i].Rate)
				gmmCurve.Add(utilCurve)
			}
			builder.addCurve(imt, g, gmmCurve)
		}
	}
	return builder.build()
}

// clusterToInputs runs stage 1 over every fault segment of a cluster.
func clusterToInputs(cluster *eq.ClusterSource, site Site) (*ClusterInputs, error) {
	ci := &ClusterInputs{Parent: cluster}
	for _, fault := range cluster.Faults() {
		list, err := sourceToInputs(fault, site)
		if err != nil {
			return nil, err
		}
		ci.Lists = append(ci.Lists, list)
	}
	return ci, nil
}

// clusterInputsToGroundMotions runs stage 2 over every segment.
func clusterInputsToGroundMotions(
	inputs *ClusterInputs,
	instances gmm.Instances,
	gmms []gmm.Gmm,
	imts []gmm.Imt) (*ClusterGroundMotions, error) {

	cgm := &ClusterGroundMotions{Parent: inputs.Parent}
	for _, list := range inputs.Lists {
		gms, err := inputsToGroundMotions(list, instances, gmms, imts)
		if err != nil {
			return nil, err
		}
		cgm.GMs = append(cgm.GMs, gms)
	}
	return cgm, nil
}

// clusterGroundMotionsToCurves replaces stage 3 for cluster sources.
// Magnitude-variant weights ride in the input rate field, so each
// segment's curve is a weight-collapsed exceedance probability. Segments
// combine as independent events, 1 − Π(1 − Pᵢ), and the joint curve is
// then scaled by the cluster recurrence rate.
func clusterGroundMotionsToCurves(cgm *ClusterGroundMotions, cfg *Config) *ClusterCurves {
	builder := newClusterCurvesBuilder(cgm)
	rate := cgm.Parent.Rate()

	for _, imt := range cfg.Imts() {
		modelCurve := cfg.LogModelCurve(imt)
		utilCurve := modelCurve.ZeroClone()

		perGmm := make(map[gmm.Gmm][]*curve.Sequence)
		for _, gms := range cgm.GMs {
			byGmmMeans := gms.Means[imt]
			byGmmSigmas := gms.Sigmas[imt]
			for g, means := range byGmmMeans {
				sigmas := byGmmSigmas[g]
				segCurve := modelCurve.ZeroClone()
				for i := range means {
					cfg.Exceedance().Exceedance(
						means[i], sigmas[i], cfg.Truncation(), imt, utilCurve)
					utilCurve.Mul(gms.Inputs.Inputs[i].Rate)
					segCurve.Add(utilCurve)
				}
				perGmm[g] = append(perGmm[g], segCurve)
			}
		}

		for g, segs := range perGmm {
			builder.addCurve(imt, g, clusterExceedance(segs).Mul(rate))
		}
	}
	return builder.build()
}
