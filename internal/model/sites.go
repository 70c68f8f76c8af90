package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/geo"
)

// SitesDocument is the YAML representation of a site list.
type SitesDocument struct {
	Sites []SiteDoc `yaml:"sites" validate:"required,min=1,dive"`
}

// SiteDoc declares one site. Unset optional fields take the calc
// defaults (vs30 760 inferred, basin depths NaN).
type SiteDoc struct {
	Name       string   `yaml:"name" validate:"required"`
	Lat        float64  `yaml:"lat" validate:"gte=-90,lte=90"`
	Lon        float64  `yaml:"lon" validate:"gte=-180,lte=360"`
	Vs30       *float64 `yaml:"vs30"`
	VsMeasured bool     `yaml:"vs_measured"`
	Z1p0       *float64 `yaml:"z1p0"`
	Z2p5       *float64 `yaml:"z2p5"`
}

// LoadSites reads and materializes a site list from a YAML file,
// preserving declared order.
func LoadSites(path string) ([]calc.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	return ParseSites(data)
}

// ParseSites materializes sites from YAML bytes.
func ParseSites(data []byte) ([]calc.Site, error) {
	var doc SitesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sites: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("validate sites: %w", err)
	}

	sites := make([]calc.Site, 0, len(doc.Sites))
	for _, d := range doc.Sites {
		b := calc.NewSiteBuilder().
			Name(d.Name).
			Location(geo.NewLocation(d.Lat, d.Lon)).
			VsInferred(!d.VsMeasured)
		if d.Vs30 != nil {
			b.Vs30(*d.Vs30)
		}
		if d.Z1p0 != nil {
			b.Z1p0(*d.Z1p0)
		}
		if d.Z2p5 != nil {
			b.Z2p5(*d.Z2p5)
		}
		site, err := b.Build()
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}
