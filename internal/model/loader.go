// Package model loads hazard models and site lists from YAML documents.
// It is the file-facing collaborator of the calculation core: documents
// are validated structurally, then assembled through the sealed builders
// in eq and calc. Ground motions in loaded models use the parametric
// attenuation form; the empirical coefficient library stays external.
package model

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/geo"
	"github.com/karim5623/hazcurve/internal/gmm"
)

var validate = validator.New()

// Document is the YAML representation of a hazard model.
type Document struct {
	Name       string         `yaml:"name" validate:"required"`
	Config     ConfigDoc      `yaml:"config" validate:"required"`
	Gmms       []GmmDoc       `yaml:"gmms" validate:"required,min=1,dive"`
	SourceSets []SourceSetDoc `yaml:"source_sets" validate:"required,min=1,dive"`
}

// ConfigDoc mirrors calc.Config.
type ConfigDoc struct {
	Curves      map[string][]float64 `yaml:"curves" validate:"required,min=1"`
	Exceedance  string               `yaml:"exceedance"`
	Truncation  *float64             `yaml:"truncation"`
	MaxDistance *float64             `yaml:"max_distance"`
	Timespan    *float64             `yaml:"timespan"`
}

// GmmDoc declares a parametric ground-motion model.
type GmmDoc struct {
	ID    string  `yaml:"id" validate:"required"`
	C0    float64 `yaml:"c0"`
	C1    float64 `yaml:"c1"`
	C2    float64 `yaml:"c2"`
	C3    float64 `yaml:"c3"`
	Sigma float64 `yaml:"sigma" validate:"gte=0"`
}

// SourceSetDoc declares one logic-tree branch.
type SourceSetDoc struct {
	Name     string             `yaml:"name" validate:"required"`
	ID       int                `yaml:"id"`
	Type     string             `yaml:"type" validate:"required"`
	Weight   float64            `yaml:"weight" validate:"gt=0,lte=1"`
	GmmNear  map[string]float64 `yaml:"gmm_weights" validate:"required,min=1"`
	GmmFar   map[string]float64 `yaml:"gmm_weights_far"`
	Cutoff   *float64           `yaml:"gmm_cutoff"`
	Band     float64            `yaml:"gmm_band"`
	Sources  []SourceDoc        `yaml:"sources" validate:"dive"`
	Clusters []ClusterDoc       `yaml:"clusters" validate:"dive"`
}

// SourceDoc declares a fault, interface, grid, or area source.
type SourceDoc struct {
	Name string `yaml:"name" validate:"required"`

	// Fault / interface geometry.
	Trace []LocDoc `yaml:"trace" validate:"omitempty,min=2,dive"`
	Dip   float64  `yaml:"dip"`
	ZTop  float64  `yaml:"ztop"`
	ZBot  float64  `yaml:"zbot"`

	// Grid / area geometry.
	Location *LocDoc  `yaml:"location"`
	Grid     []LocDoc `yaml:"grid" validate:"omitempty,min=1,dive"`
	Depth    float64  `yaml:"depth"`

	Rake     float64      `yaml:"rake"`
	Ruptures []RuptureDoc `yaml:"ruptures" validate:"required,min=1,dive"`
}

// RuptureDoc is one magnitude-rate pair.
type RuptureDoc struct {
	Mag  float64 `yaml:"mag" validate:"required"`
	Rate float64 `yaml:"rate" validate:"gte=0"`
}

// ClusterDoc declares a cluster source.
type ClusterDoc struct {
	Name   string      `yaml:"name" validate:"required"`
	Rate   float64     `yaml:"rate" validate:"gt=0"`
	Faults []SourceDoc `yaml:"faults" validate:"required,min=1,dive"`
}

// LocDoc is a latitude/longitude pair.
type LocDoc struct {
	Lat float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `yaml:"lon" validate:"gte=-180,lte=360"`
}

func (l LocDoc) loc() geo.Location { return geo.NewLocation(l.Lat, l.Lon) }

// Load reads, validates, and assembles a hazard model and its
// calculation config from a YAML file.
func Load(path string) (*eq.HazardModel, *calc.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	return Parse(data)
}

// Parse assembles a hazard model and config from YAML bytes.
func Parse(data []byte) (*eq.HazardModel, *calc.Config, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse model: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, nil, fmt.Errorf("validate model: %w", err)
	}

	cfg, err := buildConfig(doc.Config)
	if err != nil {
		return nil, nil, err
	}

	instances, err := buildGmms(doc.Gmms, cfg.Imts())
	if err != nil {
		return nil, nil, err
	}

	mb := eq.NewHazardModelBuilder(doc.Name).Gmms(instances)
	for _, setDoc := range doc.SourceSets {
		set, err := buildSourceSet(setDoc)
		if err != nil {
			return nil, nil, err
		}
		mb.Add(set)
	}
	model, err := mb.Build()
	if err != nil {
		return nil, nil, err
	}
	return model, cfg, nil
}

func buildConfig(doc ConfigDoc) (*calc.Config, error) {
	b := calc.NewConfigBuilder()
	for imt, amps := range doc.Curves {
		b.Curve(gmm.Imt(imt), amps)
	}
	if doc.Exceedance != "" {
		m, err := calc.ParseExceedanceModel(doc.Exceedance)
		if err != nil {
			return nil, err
		}
		b.Exceedance(m)
	}
	if doc.Truncation != nil {
		b.Truncation(*doc.Truncation)
	}
	if doc.MaxDistance != nil {
		b.MaxDistance(*doc.MaxDistance)
	}
	if doc.Timespan != nil {
		b.Timespan(*doc.Timespan)
	}
	return b.Build()
}

func buildGmms(docs []GmmDoc, imts []gmm.Imt) (gmm.Instances, error) {
	byID := make(map[gmm.Gmm]gmm.Parametric, len(docs))
	ids := make([]gmm.Gmm, 0, len(docs))
	for _, d := range docs {
		id := gmm.Gmm(d.ID)
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate gmm id %s", d.ID)
		}
		byID[id] = gmm.Parametric{C0: d.C0, C1: d.C1, C2: d.C2, C3: d.C3, SigmaLn: d.Sigma}
		ids = append(ids, id)
	}
	return gmm.NewInstances(ids, imts, func(g gmm.Gmm, _ gmm.Imt) (gmm.GroundMotionModel, error) {
		return byID[g], nil
	})
}

func buildSourceSet(doc SourceSetDoc) (*eq.SourceSet, error) {
	typ, err := eq.ParseSourceType(doc.Type)
	if err != nil {
		return nil, fmt.Errorf("source set %s: %w", doc.Name, err)
	}

	gb := eq.NewGmmSetBuilder().Near(gmmWeights(doc.GmmNear))
	if len(doc.GmmFar) > 0 {
		gb.Far(gmmWeights(doc.GmmFar))
	}
	if doc.Cutoff != nil {
		gb.Cutoff(*doc.Cutoff)
	}
	if doc.Band > 0 {
		gb.Band(doc.Band)
	}
	gmmSet, err := gb.Build()
	if err != nil {
		return nil, fmt.Errorf("source set %s: %w", doc.Name, err)
	}

	sb := eq.NewSourceSetBuilder(typ).
		Name(doc.Name).
		ID(doc.ID).
		Weight(doc.Weight).
		Gmms(gmmSet)

	switch typ {
	case eq.ClusterType:
		for _, cd := range doc.Clusters {
			cluster, err := buildCluster(cd)
			if err != nil {
				return nil, err
			}
			sb.AddCluster(cluster)
		}
	case eq.SystemType:
		// System rupture tables are built programmatically; their
		// on-disk encoding belongs to an inversion-specific loader.
		return nil, fmt.Errorf("source set %s: system sets are not file-loadable", doc.Name)
	default:
		for _, sd := range doc.Sources {
			src, err := buildSource(typ, sd)
			if err != nil {
				return nil, err
			}
			sb.Add(src)
		}
	}
	return sb.Build()
}

func buildCluster(doc ClusterDoc) (*eq.ClusterSource, error) {
	faults := make([]*eq.FaultSource, 0, len(doc.Faults))
	for _, fd := range doc.Faults {
		src, err := buildSource(eq.FaultType, fd)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: %w", doc.Name, err)
		}
		faults = append(faults, src.(*eq.FaultSource))
	}
	return eq.NewClusterSource(doc.Name, doc.Rate, faults)
}

func buildSource(typ eq.SourceType, doc SourceDoc) (eq.Source, error) {
	mags := make([]float64, len(doc.Ruptures))
	rates := make([]float64, len(doc.Ruptures))
	for i, r := range doc.Ruptures {
		mags[i] = r.Mag
		rates[i] = r.Rate
	}

	switch typ {
	case eq.FaultType, eq.InterfaceType:
		if len(doc.Trace) < 2 {
			return nil, fmt.Errorf("source %s: fault trace requires two points", doc.Name)
		}
		surface := eq.NewPlanarSurface(
			doc.Trace[0].loc(), doc.Trace[1].loc(), doc.Dip, doc.ZTop, doc.ZBot)
		ruptures := make([]eq.Rupture, len(doc.Ruptures))
		for i := range doc.Ruptures {
			ruptures[i] = eq.Rupture{
				Rate: rates[i], Mag: mags[i], Rake: doc.Rake, Surface: surface,
			}
		}
		if typ == eq.InterfaceType {
			return eq.NewInterfaceSource(doc.Name, ruptures)
		}
		return eq.NewFaultSource(doc.Name, ruptures)

	case eq.GridType:
		if doc.Location == nil {
			return nil, fmt.Errorf("source %s: grid source requires a location", doc.Name)
		}
		return eq.NewGridSource(doc.Name, doc.Location.loc(), mags, rates, doc.Depth, doc.Rake)

	case eq.AreaType:
		if len(doc.Grid) == 0 {
			return nil, fmt.Errorf("source %s: area source requires grid locations", doc.Name)
		}
		locs := make([]geo.Location, len(doc.Grid))
		for i, l := range doc.Grid {
			locs[i] = l.loc()
		}
		return eq.NewAreaSource(doc.Name, locs, mags, rates, doc.Depth, doc.Rake)

	default:
		return nil, fmt.Errorf("source %s: unsupported source type %s", doc.Name, typ)
	}
}

func gmmWeights(m map[string]float64) map[gmm.Gmm]float64 {
	out := make(map[gmm.Gmm]float64, len(m))
	for k, v := range m {
		out[gmm.Gmm(k)] = v
	}
	return out
}
