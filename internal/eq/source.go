// Package eq models the earthquake-source side of a hazard model: rupture
// surfaces, the closed source taxonomy, weighted source sets with their
// ground-motion logic trees, and the sealed HazardModel consumed by the
// calculation pipeline.
package eq

import (
	"errors"
	"fmt"
	"math"

	"github.com/karim5623/hazcurve/internal/geo"
)

// SourceType tags the closed set of source variants. The tag selects the
// per-source algorithm in the calculation pipeline.
type SourceType int

// Source taxonomy.
const (
	GridType SourceType = iota
	FaultType
	ClusterType
	InterfaceType
	SystemType
	AreaType
)

var typeNames = map[SourceType]string{
	GridType:      "grid",
	FaultType:     "fault",
	ClusterType:   "cluster",
	InterfaceType: "interface",
	SystemType:    "system",
	AreaType:      "area",
}

func (t SourceType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("SourceType(%d)", int(t))
}

// ParseSourceType resolves a type name used in model files.
func ParseSourceType(s string) (SourceType, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown source type %q", s)
}

// Rupture is one potential earthquake: an annual rate, a moment
// magnitude, a rake in degrees, and a geometry.
type Rupture struct {
	Rate    float64
	Mag     float64
	Rake    float64
	Surface RuptureSurface
}

func (r Rupture) validate() error {
	if r.Rate < 0 || math.IsNaN(r.Rate) || math.IsInf(r.Rate, 0) {
		return fmt.Errorf("rupture rate %v out of range", r.Rate)
	}
	if math.IsNaN(r.Mag) || math.IsInf(r.Mag, 0) {
		return errors.New("rupture magnitude is not finite")
	}
	if r.Surface == nil {
		return errors.New("rupture has no surface")
	}
	return nil
}

// Source generates ruptures in declared order. MinDistance supplies the
// quick representative distance used by source-set pre-filtering; it never
// filters individual ruptures.
type Source interface {
	Name() string
	Type() SourceType
	Ruptures() []Rupture
	MinDistance(loc geo.Location) float64
}

// listSource is the shared core of the rupture-list variants.
type listSource struct {
	name     string
	ruptures []Rupture
}

func newListSource(name string, ruptures []Rupture) (listSource, error) {
	if name == "" {
		return listSource{}, errors.New("source name required")
	}
	if len(ruptures) == 0 {
		return listSource{}, fmt.Errorf("source %s has no ruptures", name)
	}
	for i, r := range ruptures {
		if err := r.validate(); err != nil {
			return listSource{}, fmt.Errorf("source %s rupture %d: %w", name, i, err)
		}
	}
	return listSource{name: name, ruptures: ruptures}, nil
}

func (s *listSource) Name() string        { return s.name }
func (s *listSource) Ruptures() []Rupture { return s.ruptures }

func (s *listSource) MinDistance(loc geo.Location) float64 {
	min := math.Inf(1)
	for _, r := range s.ruptures {
		if d := r.Surface.DistanceTo(loc).RJB; d < min {
			min = d
		}
	}
	return min
}

// FaultSource is a single fault with a list of magnitude-rate ruptures
// sharing (or refining) one surface.
type FaultSource struct {
	listSource
}

// NewFaultSource creates a FaultSource, validating every rupture.
func NewFaultSource(name string, ruptures []Rupture) (*FaultSource, error) {
	ls, err := newListSource(name, ruptures)
	if err != nil {
		return nil, err
	}
	return &FaultSource{listSource: ls}, nil
}

// Type implements Source.
func (s *FaultSource) Type() SourceType { return FaultType }

// InterfaceSource is a subduction-interface fault source. It shares the
// fault algorithm; the distinct tag keeps per-type curve roll-ups apart.
type InterfaceSource struct {
	listSource
}

// NewInterfaceSource creates an InterfaceSource, validating every rupture.
func NewInterfaceSource(name string, ruptures []Rupture) (*InterfaceSource, error) {
	ls, err := newListSource(name, ruptures)
	if err != nil {
		return nil, err
	}
	return &InterfaceSource{listSource: ls}, nil
}

// Type implements Source.
func (s *InterfaceSource) Type() SourceType { return InterfaceType }

// GridSource is a point source at a fixed location with a
// magnitude-frequency distribution realized as point-surface ruptures.
type GridSource struct {
	listSource
	loc geo.Location
}

// NewGridSource creates a GridSource at loc whose ruptures carry the
// given magnitude-rate pairs at depth zTop.
func NewGridSource(name string, loc geo.Location, mags, rates []float64, zTop, rake float64) (*GridSource, error) {
	if len(mags) != len(rates) {
		return nil, fmt.Errorf("grid source %s: %d magnitudes for %d rates", name, len(mags), len(rates))
	}
	surface := NewPointSurface(loc, zTop)
	ruptures := make([]Rupture, len(mags))
	for i := range mags {
		ruptures[i] = Rupture{Rate: rates[i], Mag: mags[i], Rake: rake, Surface: surface}
	}
	ls, err := newListSource(name, ruptures)
	if err != nil {
		return nil, err
	}
	return &GridSource{listSource: ls, loc: loc}, nil
}

// Type implements Source.
func (s *GridSource) Type() SourceType { return GridType }

// MinDistance implements Source using the single grid location.
func (s *GridSource) MinDistance(loc geo.Location) float64 {
	return geo.DistanceFast(s.loc, loc)
}

// AreaSource integrates an areal zone as a set of gridded sub-locations,
// splitting the zone's magnitude-frequency distribution evenly across
// them. Ruptures iterate sub-locations in declared order.
type AreaSource struct {
	listSource
	locs []geo.Location
}

// NewAreaSource creates an AreaSource over the gridded locations. The
// supplied rates are zone totals; each sub-location receives rate/len(locs).
func NewAreaSource(name string, locs []geo.Location, mags, rates []float64, zTop, rake float64) (*AreaSource, error) {
	if len(locs) == 0 {
		return nil, fmt.Errorf("area source %s has no grid locations", name)
	}
	if len(mags) != len(rates) {
		return nil, fmt.Errorf("area source %s: %d magnitudes for %d rates", name, len(mags), len(rates))
	}
	scale := 1.0 / float64(len(locs))
	ruptures := make([]Rupture, 0, len(locs)*len(mags))
	for _, loc := range locs {
		surface := NewPointSurface(loc, zTop)
		for i := range mags {
			ruptures = append(ruptures, Rupture{
				Rate:    rates[i] * scale,
				Mag:     mags[i],
				Rake:    rake,
				Surface: surface,
			})
		}
	}
	ls, err := newListSource(name, ruptures)
	if err != nil {
		return nil, err
	}
	return &AreaSource{listSource: ls, locs: locs}, nil
}

// Type implements Source.
func (s *AreaSource) Type() SourceType { return AreaType }

// MinDistance implements Source over the grid locations.
func (s *AreaSource) MinDistance(loc geo.Location) float64 {
	min := math.Inf(1)
	for _, l := range s.locs {
		if d := geo.DistanceFast(l, loc); d < min {
			min = d
		}
	}
	return min
}

// ClusterSource bundles fault-segment sources whose ruptures occur
// independently within a single Poisson recurrence envelope. The
// calculation combines segment exceedances as 1 − Π(1 − Pᵢ) before
// scaling by Rate.
type ClusterSource struct {
	name   string
	rate   float64
	faults []*FaultSource
}

// NewClusterSource creates a ClusterSource with the given recurrence rate.
func NewClusterSource(name string, rate float64, faults []*FaultSource) (*ClusterSource, error) {
	if name == "" {
		return nil, errors.New("cluster source name required")
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("cluster source %s: rate %v out of range", name, rate)
	}
	if len(faults) == 0 {
		return nil, fmt.Errorf("cluster source %s has no fault segments", name)
	}
	return &ClusterSource{name: name, rate: rate, faults: faults}, nil
}

// Name returns the cluster name.
func (s *ClusterSource) Name() string { return s.name }

// Rate returns the cluster recurrence rate.
func (s *ClusterSource) Rate() float64 { return s.rate }

// Faults returns the cluster's segment sources in declared order.
func (s *ClusterSource) Faults() []*FaultSource { return s.faults }

// MinDistance returns the minimum representative distance across segments.
func (s *ClusterSource) MinDistance(loc geo.Location) float64 {
	min := math.Inf(1)
	for _, f := range s.faults {
		if d := f.MinDistance(loc); d < min {
			min = d
		}
	}
	return min
}
