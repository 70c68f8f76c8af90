// Package gmm defines the ground-motion model surface consumed by the
// hazard calculation: intensity measure types, model identifiers, the
// per-rupture input record, and the GroundMotionModel contract. The
// empirical coefficient library behind that contract lives outside this
// repository; models loaded from files use the Parametric form.
package gmm

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Imt is an intensity measure type: PGA, PGV, or spectral acceleration at
// a period, encoded as e.g. "SA0P2" for 0.2 s.
type Imt string

// Common intensity measure types.
const (
	PGA   Imt = "PGA"
	PGV   Imt = "PGV"
	SA0P2 Imt = "SA0P2"
	SA1P0 Imt = "SA1P0"
)

// IsSA reports whether the Imt is a spectral acceleration.
func (i Imt) IsSA() bool { return strings.HasPrefix(string(i), "SA") }

// Period returns the spectral period in seconds, or 0 for non-SA types.
func (i Imt) Period() float64 {
	if !i.IsSA() {
		return 0
	}
	s := strings.Replace(strings.TrimPrefix(string(i), "SA"), "P", ".", 1)
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return p
}

// Gmm identifies a ground-motion model within a model's logic tree.
type Gmm string

// Input is the per-rupture record consumed by a GroundMotionModel.
// Distances are in kilometers, depths in kilometers positive-down,
// magnitude is moment magnitude, and rake and dip are in degrees.
type Input struct {
	Rate       float64
	Mag        float64
	RJB        float64
	RRup       float64
	RX         float64
	Dip        float64
	Width      float64
	ZTop       float64
	ZHyp       float64
	Rake       float64
	Vs30       float64
	VsInferred bool
	Z1p0       float64
	Z2p5       float64
}

// GroundMotionModel predicts the natural log of median ground motion, in
// units of gravity, and its standard deviation for a single Imt.
type GroundMotionModel interface {
	Calc(in Input) (mean, sigma float64)
}

// Instances is the dense (Gmm, Imt) table of model instances used by the
// ground-motion stage of the pipeline.
type Instances map[Gmm]map[Imt]GroundMotionModel

// NewInstances builds a dense Instances table by invoking factory for the
// cross product of gmms and imts. A factory error aborts construction.
func NewInstances(
	gmms []Gmm,
	imts []Imt,
	factory func(Gmm, Imt) (GroundMotionModel, error)) (Instances, error) {

	table := make(Instances, len(gmms))
	for _, g := range gmms {
		row := make(map[Imt]GroundMotionModel, len(imts))
		for _, m := range imts {
			inst, err := factory(g, m)
			if err != nil {
				return nil, fmt.Errorf("gmm %s/%s: %w", g, m, err)
			}
			row[m] = inst
		}
		table[g] = row
	}
	return table, nil
}

// Gmms returns the table's model identifiers in sorted order.
func (t Instances) Gmms() []Gmm {
	ids := make([]Gmm, 0, len(t))
	for g := range t {
		ids = append(ids, g)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Get returns the model instance for (g, imt), or an error if the table
// has no entry. A missing entry is a configuration error.
func (t Instances) Get(g Gmm, imt Imt) (GroundMotionModel, error) {
	row, ok := t[g]
	if !ok {
		return nil, fmt.Errorf("no instances for gmm %s", g)
	}
	inst, ok := row[imt]
	if !ok {
		return nil, fmt.Errorf("gmm %s not instantiated for imt %s", g, imt)
	}
	return inst, nil
}

// Parametric is a log-linear attenuation form used by file-loaded models:
//
//	ln(gm) = C0 + C1·M − C2·ln(RRup + C3)
//
// with a constant sigma. It stands in for the external empirical library
// in validation models and the demonstration CLI.
type Parametric struct {
	C0, C1, C2, C3 float64
	SigmaLn        float64
}

// Calc implements GroundMotionModel.
func (p Parametric) Calc(in Input) (float64, float64) {
	mean := p.C0 + p.C1*in.Mag - p.C2*math.Log(in.RRup+p.C3)
	return mean, p.SigmaLn
}
