package calc

import (
	"fmt"
	"math"

	"github.com/karim5623/hazcurve/internal/geo"
)

// Default site parameters: a stiff-soil reference site. Basin depths
// default to NaN, signalling ground-motion models to use their own
// centered values.
const (
	DefaultVs30 = 760.0
)

// Site is the fixed location and near-surface profile a hazard curve is
// computed for. Immutable; create via SiteBuilder.
type Site struct {
	Name       string
	Location   geo.Location
	Vs30       float64
	VsInferred bool
	Z1p0       float64
	Z2p5       float64
}

// SiteBuilder assembles a Site. Single use; Build seals the value.
type SiteBuilder struct {
	site  Site
	built bool
}

// NewSiteBuilder returns a builder with default site parameters.
func NewSiteBuilder() *SiteBuilder {
	return &SiteBuilder{site: Site{
		Name:       "Unnamed",
		Vs30:       DefaultVs30,
		VsInferred: true,
		Z1p0:       math.NaN(),
		Z2p5:       math.NaN(),
	}}
}

// Name sets the site name.
func (b *SiteBuilder) Name(name string) *SiteBuilder {
	b.checkOpen()
	if name != "" {
		b.site.Name = name
	}
	return b
}

// Location sets the site location.
func (b *SiteBuilder) Location(loc geo.Location) *SiteBuilder {
	b.checkOpen()
	b.site.Location = loc
	return b
}

// Vs30 sets the time-averaged shear-wave velocity of the top 30 m, in m/s.
func (b *SiteBuilder) Vs30(v float64) *SiteBuilder {
	b.checkOpen()
	b.site.Vs30 = v
	return b
}

// VsInferred marks whether vs30 was inferred rather than measured.
func (b *SiteBuilder) VsInferred(inferred bool) *SiteBuilder {
	b.checkOpen()
	b.site.VsInferred = inferred
	return b
}

// Z1p0 sets the depth to the 1.0 km/s shear-wave horizon, in kilometers.
func (b *SiteBuilder) Z1p0(z float64) *SiteBuilder {
	b.checkOpen()
	b.site.Z1p0 = z
	return b
}

// Z2p5 sets the depth to the 2.5 km/s shear-wave horizon, in kilometers.
func (b *SiteBuilder) Z2p5(z float64) *SiteBuilder {
	b.checkOpen()
	b.site.Z2p5 = z
	return b
}

// Build validates and seals the Site.
func (b *SiteBuilder) Build() (Site, error) {
	b.checkOpen()
	b.built = true
	if !b.site.Location.Valid() {
		return Site{}, configErr("site %s: location out of range", b.site.Name)
	}
	if b.site.Vs30 <= 0 || math.IsNaN(b.site.Vs30) {
		return Site{}, configErr("site %s: vs30 %v out of range", b.site.Name, b.site.Vs30)
	}
	return b.site, nil
}

func (b *SiteBuilder) checkOpen() {
	if b.built {
		panic("calc: SiteBuilder reused after Build")
	}
}

func (s Site) String() string {
	return fmt.Sprintf("%s [%.3f, %.3f] vs30=%g", s.Name, s.Location.Lat, s.Location.Lon, s.Vs30)
}
