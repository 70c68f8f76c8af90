package eq

import (
	"errors"
	"fmt"
	"math"

	"github.com/karim5623/hazcurve/internal/geo"
)

// SourceSet is one logic-tree branch of a hazard model: a weighted,
// ordered bundle of same-type sources sharing a GmmSet. For ClusterType
// sets the sources are ClusterSources; for SystemType the set carries a
// SystemTable; all other types iterate Sources.
type SourceSet struct {
	name     string
	id       int
	weight   float64
	gmms     *GmmSet
	typ      SourceType
	sources  []Source
	clusters []*ClusterSource
	system   *SystemTable
}

// SourceSetBuilder assembles a SourceSet. Single use; Build seals the set.
type SourceSetBuilder struct {
	set   *SourceSet
	built bool
}

// NewSourceSetBuilder returns a builder for a set of the given type.
func NewSourceSetBuilder(typ SourceType) *SourceSetBuilder {
	return &SourceSetBuilder{set: &SourceSet{typ: typ, weight: 1}}
}

// Name sets the source set name.
func (b *SourceSetBuilder) Name(name string) *SourceSetBuilder {
	b.checkOpen()
	b.set.name = name
	return b
}

// ID sets the source set id.
func (b *SourceSetBuilder) ID(id int) *SourceSetBuilder {
	b.checkOpen()
	b.set.id = id
	return b
}

// Weight sets the logic-tree weight of the set, in (0, 1].
func (b *SourceSetBuilder) Weight(w float64) *SourceSetBuilder {
	b.checkOpen()
	b.set.weight = w
	return b
}

// Gmms sets the ground-motion logic tree.
func (b *SourceSetBuilder) Gmms(g *GmmSet) *SourceSetBuilder {
	b.checkOpen()
	b.set.gmms = g
	return b
}

// Add appends a source. The source type must match the set type.
func (b *SourceSetBuilder) Add(s Source) *SourceSetBuilder {
	b.checkOpen()
	b.set.sources = append(b.set.sources, s)
	return b
}

// AddCluster appends a cluster source to a ClusterType set.
func (b *SourceSetBuilder) AddCluster(c *ClusterSource) *SourceSetBuilder {
	b.checkOpen()
	b.set.clusters = append(b.set.clusters, c)
	return b
}

// System sets the rupture table of a SystemType set.
func (b *SourceSetBuilder) System(t *SystemTable) *SourceSetBuilder {
	b.checkOpen()
	b.set.system = t
	return b
}

// Build validates and seals the SourceSet.
func (b *SourceSetBuilder) Build() (*SourceSet, error) {
	b.checkOpen()
	b.built = true
	s := b.set
	if s.name == "" {
		return nil, errors.New("source set name required")
	}
	if s.weight <= 0 || s.weight > 1 || math.IsNaN(s.weight) {
		return nil, fmt.Errorf("source set %s: weight %v not in (0,1]", s.name, s.weight)
	}
	if s.gmms == nil {
		return nil, fmt.Errorf("source set %s has no gmm set", s.name)
	}
	switch s.typ {
	case ClusterType:
		if len(s.clusters) == 0 || len(s.sources) > 0 || s.system != nil {
			return nil, fmt.Errorf("source set %s: cluster set requires cluster sources only", s.name)
		}
	case SystemType:
		if s.system == nil || len(s.sources) > 0 || len(s.clusters) > 0 {
			return nil, fmt.Errorf("source set %s: system set requires a rupture table only", s.name)
		}
	default:
		if len(s.sources) == 0 || len(s.clusters) > 0 || s.system != nil {
			return nil, fmt.Errorf("source set %s: no sources", s.name)
		}
		for _, src := range s.sources {
			if src.Type() != s.typ {
				return nil, fmt.Errorf(
					"source set %s: %s source %s in %s set",
					s.name, src.Type(), src.Name(), s.typ)
			}
		}
	}
	return s, nil
}

func (b *SourceSetBuilder) checkOpen() {
	if b.built {
		panic("eq: SourceSetBuilder reused after Build")
	}
}

// Name returns the set name.
func (s *SourceSet) Name() string { return s.name }

// ID returns the set id.
func (s *SourceSet) ID() int { return s.id }

// Weight returns the set's logic-tree weight.
func (s *SourceSet) Weight() float64 { return s.weight }

// Gmms returns the set's ground-motion logic tree.
func (s *SourceSet) Gmms() *GmmSet { return s.gmms }

// Type returns the set's source type tag.
func (s *SourceSet) Type() SourceType { return s.typ }

// Sources returns the set's sources in declared order.
func (s *SourceSet) Sources() []Source { return s.sources }

// Clusters returns the cluster sources of a ClusterType set.
func (s *SourceSet) Clusters() []*ClusterSource { return s.clusters }

// System returns the rupture table of a SystemType set.
func (s *SourceSet) System() *SystemTable { return s.system }

// ForLocation returns, in declared order, the sources whose representative
// distance from loc is within rMax. Filtering is per source; individual
// ruptures are never dropped.
func (s *SourceSet) ForLocation(loc geo.Location, rMax float64) []Source {
	out := make([]Source, 0, len(s.sources))
	for _, src := range s.sources {
		if src.MinDistance(loc) <= rMax {
			out = append(out, src)
		}
	}
	return out
}

// ClustersForLocation is ForLocation for cluster sets.
func (s *SourceSet) ClustersForLocation(loc geo.Location, rMax float64) []*ClusterSource {
	out := make([]*ClusterSource, 0, len(s.clusters))
	for _, c := range s.clusters {
		if c.MinDistance(loc) <= rMax {
			out = append(out, c)
		}
	}
	return out
}
