package eq

import (
	"errors"
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/karim5623/hazcurve/internal/geo"
)

// SystemTable holds the pre-indexed rupture inventory of a fault-system
// ("inversion") source set: shared fault sections and, per rupture, the
// bitset of participating sections plus scalar attributes. Ruptures are
// processed in bulk rather than through per-source fan-out.
type SystemTable struct {
	sections []RuptureSurface
	rupBits  []*bitset.BitSet
	mags     []float64
	rates    []float64
	rakes    []float64
}

// SystemTableBuilder assembles a SystemTable. Single use.
type SystemTableBuilder struct {
	table *SystemTable
	built bool
}

// NewSystemTableBuilder returns a builder over the given fault sections.
func NewSystemTableBuilder(sections []RuptureSurface) *SystemTableBuilder {
	return &SystemTableBuilder{table: &SystemTable{sections: sections}}
}

// AddRupture appends a rupture participating in the sections whose
// indices are set in bits.
func (b *SystemTableBuilder) AddRupture(bits *bitset.BitSet, mag, rate, rake float64) *SystemTableBuilder {
	if b.built {
		panic("eq: SystemTableBuilder reused after Build")
	}
	t := b.table
	t.rupBits = append(t.rupBits, bits)
	t.mags = append(t.mags, mag)
	t.rates = append(t.rates, rate)
	t.rakes = append(t.rakes, rake)
	return b
}

// Build validates and seals the table.
func (b *SystemTableBuilder) Build() (*SystemTable, error) {
	if b.built {
		panic("eq: SystemTableBuilder reused after Build")
	}
	b.built = true
	t := b.table
	if len(t.sections) == 0 {
		return nil, errors.New("system table has no sections")
	}
	if len(t.rupBits) == 0 {
		return nil, errors.New("system table has no ruptures")
	}
	n := uint(len(t.sections))
	for i, bits := range t.rupBits {
		if bits == nil || bits.Count() == 0 {
			return nil, fmt.Errorf("system rupture %d references no sections", i)
		}
		if last, ok := lastSet(bits); ok && last >= n {
			return nil, fmt.Errorf("system rupture %d references section %d of %d", i, last, n)
		}
		if t.rates[i] < 0 || math.IsNaN(t.rates[i]) {
			return nil, fmt.Errorf("system rupture %d rate %v out of range", i, t.rates[i])
		}
	}
	return t, nil
}

func lastSet(b *bitset.BitSet) (uint, bool) {
	var last uint
	var any bool
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		last, any = i, true
	}
	return last, any
}

// NumSections returns the section count.
func (t *SystemTable) NumSections() int { return len(t.sections) }

// NumRuptures returns the rupture count.
func (t *SystemTable) NumRuptures() int { return len(t.rupBits) }

// Section returns the surface of section i.
func (t *SystemTable) Section(i int) RuptureSurface { return t.sections[i] }

// SectionDistances computes the per-section Distance table for a site.
// Each section is measured once; ruptures reuse the table.
func (t *SystemTable) SectionDistances(loc geo.Location) []Distance {
	out := make([]Distance, len(t.sections))
	for i, s := range t.sections {
		out[i] = s.DistanceTo(loc)
	}
	return out
}

// SectionBitsWithin returns a bitset of the sections whose rJB is within
// rMax of the site, given a precomputed section distance table.
func (t *SystemTable) SectionBitsWithin(dists []Distance, rMax float64) *bitset.BitSet {
	bits := bitset.New(uint(len(t.sections)))
	for i, d := range dists {
		if d.RJB <= rMax {
			bits.Set(uint(i))
		}
	}
	return bits
}

// Rupture returns the attributes of rupture i: its section bits, moment
// magnitude, annual rate, and rake.
func (t *SystemTable) Rupture(i int) (*bitset.BitSet, float64, float64, float64) {
	return t.rupBits[i], t.mags[i], t.rates[i], t.rakes[i]
}

// MinDistance returns the minimum rJB across sections. The calculation
// does not call it; system ruptures are selected per section through
// SectionBitsWithin.
func (t *SystemTable) MinDistance(loc geo.Location) float64 {
	min := math.Inf(1)
	for _, s := range t.sections {
		if d := s.DistanceTo(loc).RJB; d < min {
			min = d
		}
	}
	return min
}
