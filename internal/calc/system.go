package calc

import (
	"math"

	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// systemToCurves runs stages 1-3 in bulk for a fault-system source set.
// Per-section distances are computed once; a bitset of in-range sections
// selects the ruptures to materialize, and the selected inputs flow
// through the shared curve assembly without per-source fan-out.
func systemToCurves(
	set *eq.SourceSet,
	cfg *Config,
	site Site,
	instances gmm.Instances,
	imts []gmm.Imt) (*CurveSet, error) {

	table := set.System()
	dists := table.SectionDistances(site.Location)
	for i, d := range dists {
		if !finite(d.RJB) || !finite(d.RRup) || !finite(d.RX) {
			return nil, modelErr(set.Name(), "", "section %d: non-finite distance", i)
		}
	}
	siteBits := table.SectionBitsWithin(dists, cfg.MaxDistance())

	list := &InputList{
		SourceName: set.Name(),
		minR:       math.Inf(1),
	}
	for i := 0; i < table.NumRuptures(); i++ {
		bits, mag, rate, rake := table.Rupture(i)
		if bits.IntersectionCardinality(siteBits) == 0 {
			continue
		}

		// Reduce participating sections: minimum per distance metric,
		// mean dip/width/depth.
		rJB, rRup := math.Inf(1), math.Inf(1)
		rX := 0.0
		var dip, width, zTop float64
		n := 0.0
		for s, ok := bits.NextSet(0); ok; s, ok = bits.NextSet(s + 1) {
			d := dists[s]
			if d.RJB < rJB {
				rJB = d.RJB
			}
			if d.RRup < rRup {
				rRup = d.RRup
				rX = d.RX
			}
			surface := table.Section(int(s))
			dip += surface.Dip()
			width += surface.Width()
			zTop += surface.Depth()
			n++
		}
		dip /= n
		width /= n
		zTop /= n

		list.Inputs = append(list.Inputs, gmm.Input{
			Rate:       rate,
			Mag:        mag,
			RJB:        rJB,
			RRup:       rRup,
			RX:         rX,
			Dip:        dip,
			Width:      width,
			ZTop:       zTop,
			ZHyp:       eq.HypocentralDepth(dip, width, zTop),
			Rake:       rake,
			Vs30:       site.Vs30,
			VsInferred: site.VsInferred,
			Z1p0:       site.Z1p0,
			Z2p5:       site.Z2p5,
		})
		if rJB < list.minR {
			list.minR = rJB
		}
	}

	gms, err := inputsToGroundMotions(list, instances, set.Gmms().Gmms(), imts)
	if err != nil {
		return nil, err
	}
	builder := newCurveSetBuilder(set, cfg)
	builder.addCurves(groundMotionsToCurves(gms, cfg))
	return builder.build(), nil
}
