package eq

import (
	"errors"
	"fmt"

	"github.com/karim5623/hazcurve/internal/gmm"
)

// HazardModel is a sealed earthquake-source model: named, ordered
// SourceSets plus the ground-motion model instances the sets refer to.
// Once built it is immutable and safe to share across goroutines.
type HazardModel struct {
	name string
	sets []*SourceSet
	gmms gmm.Instances
}

// HazardModelBuilder assembles a HazardModel. Single use.
type HazardModelBuilder struct {
	model *HazardModel
	built bool
}

// NewHazardModelBuilder returns a builder for a model with the given name.
func NewHazardModelBuilder(name string) *HazardModelBuilder {
	return &HazardModelBuilder{model: &HazardModel{name: name}}
}

// Add appends a source set; declaration order fixes consolidation order.
func (b *HazardModelBuilder) Add(s *SourceSet) *HazardModelBuilder {
	b.checkOpen()
	b.model.sets = append(b.model.sets, s)
	return b
}

// Gmms sets the (Gmm, Imt) instance table backing the model's gmm sets.
func (b *HazardModelBuilder) Gmms(t gmm.Instances) *HazardModelBuilder {
	b.checkOpen()
	b.model.gmms = t
	return b
}

// Build validates and seals the model. Every gmm referenced by a source
// set must have an instance row.
func (b *HazardModelBuilder) Build() (*HazardModel, error) {
	b.checkOpen()
	b.built = true
	m := b.model
	if m.name == "" {
		return nil, errors.New("hazard model name required")
	}
	if len(m.sets) == 0 {
		return nil, errors.New("hazard model has no source sets")
	}
	if m.gmms == nil {
		return nil, errors.New("hazard model has no gmm instances")
	}
	for _, set := range m.sets {
		for _, g := range set.Gmms().Gmms() {
			if _, ok := m.gmms[g]; !ok {
				return nil, fmt.Errorf(
					"source set %s references gmm %s with no instances", set.Name(), g)
			}
		}
	}
	return m, nil
}

func (b *HazardModelBuilder) checkOpen() {
	if b.built {
		panic("eq: HazardModelBuilder reused after Build")
	}
}

// Name returns the model name.
func (m *HazardModel) Name() string { return m.name }

// SourceSets returns the model's source sets in declared order.
func (m *HazardModel) SourceSets() []*SourceSet { return m.sets }

// Gmms returns the model's ground-motion instance table.
func (m *HazardModel) Gmms() gmm.Instances { return m.gmms }
