package eq

import (
	"math"

	"github.com/karim5623/hazcurve/internal/geo"
)

// Distance bundles the three site-to-rupture distance metrics, in
// kilometers. RJB is the Joyner-Boore distance to the surface projection,
// RRup the closest distance to the rupture plane, and RX the signed
// horizontal distance to the surface trace, positive on the hanging wall.
type Distance struct {
	RJB  float64
	RRup float64
	RX   float64
}

// RuptureSurface is the geometric contract a rupture exposes to the
// hazard calculation. Dip is in degrees, Width the down-dip width in
// kilometers, and Depth the depth to the top of rupture in kilometers.
type RuptureSurface interface {
	DistanceTo(loc geo.Location) Distance
	Dip() float64
	Width() float64
	Depth() float64
}

// HypocentralDepth returns the depth of a centered hypocenter for a
// rupture of the given dip (degrees), down-dip width, and top depth,
// clamped so the hypocenter stays above the bottom edge of the surface.
func HypocentralDepth(dip, width, zTop float64) float64 {
	sinDip := math.Sin(dip * math.Pi / 180)
	zHyp := zTop + sinDip*width/2
	if zBot := zTop + sinDip*width; zHyp > zBot {
		zHyp = zBot
	}
	return zHyp
}

// PlanarSurface is a rectangular rupture plane defined by a two-point
// surface trace, a dip measured down from horizontal on the right side of
// the strike direction, and top and bottom depths.
type PlanarSurface struct {
	p1, p2     geo.Location
	dip        float64
	zTop, zBot float64
}

// NewPlanarSurface creates a PlanarSurface from trace endpoints p1→p2
// (strike direction), dip in (0, 90], and depths 0 ≤ zTop ≤ zBot.
func NewPlanarSurface(p1, p2 geo.Location, dip, zTop, zBot float64) *PlanarSurface {
	return &PlanarSurface{p1: p1, p2: p2, dip: dip, zTop: zTop, zBot: zBot}
}

// Dip returns the dip in degrees.
func (s *PlanarSurface) Dip() float64 { return s.dip }

// Depth returns the depth to the top of rupture in kilometers.
func (s *PlanarSurface) Depth() float64 { return s.zTop }

// Width returns the down-dip width in kilometers.
func (s *PlanarSurface) Width() float64 {
	sinDip := math.Sin(s.dip * math.Pi / 180)
	if sinDip == 0 {
		return 0
	}
	return (s.zBot - s.zTop) / sinDip
}

// DistanceTo computes rJB, rRup, and rX from the site to the surface.
//
// The trace is projected into a planar frame centered on the site. With
// u the along-strike and v the down-dip horizontal coordinate of the
// site relative to the first trace endpoint, rX is the unclamped v, rJB
// the distance to the surface-projection rectangle, and rRup the exact
// 3D distance to the inclined rectangle.
func (s *PlanarSurface) DistanceTo(loc geo.Location) Distance {
	a := geo.ToPlane(loc, s.p1)
	b := geo.ToPlane(loc, s.p2)

	strike := b.Sub(a)
	length := strike.Length()
	if length == 0 {
		// Degenerate trace; treat as a point at p1.
		return pointDistance(loc, s.p1, s.zTop)
	}
	e1 := geo.Vec2{X: strike.X / length, Y: strike.Y / length}
	// Down-dip horizontal direction, 90° clockwise from strike.
	e2 := geo.Vec2{X: e1.Y, Y: -e1.X}

	// Site coordinates relative to the first trace endpoint. The site is
	// at the frame origin, so the relative vector is -a.
	rel := geo.Vec2{X: -a.X, Y: -a.Y}
	u := rel.Dot(e1)
	v := rel.Dot(e2)

	dipRad := s.dip * math.Pi / 180
	width := s.Width()
	wh := width * math.Cos(dipRad) // horizontal extent of the footprint

	du := 0.0
	if u < 0 {
		du = -u
	} else if u > length {
		du = u - length
	}
	dv := 0.0
	if v < 0 {
		dv = -v
	} else if v > wh {
		dv = v - wh
	}
	rJB := math.Hypot(du, dv)

	// In the (v, z) section the rupture is the segment from (0, zTop) to
	// (wh, zBot); the site sits at (v, 0) offset du along strike.
	sect, _ := geo.SegmentDistance(
		geo.Vec2{X: v, Y: 0},
		geo.Vec2{X: 0, Y: s.zTop},
		geo.Vec2{X: wh, Y: s.zBot})
	rRup := math.Hypot(du, sect)

	return Distance{RJB: rJB, RRup: rRup, RX: v}
}

// PointSurface is the degenerate surface of a gridded point source: a
// vertical, zero-width rupture at a fixed depth.
type PointSurface struct {
	loc  geo.Location
	zTop float64
}

// NewPointSurface creates a PointSurface at loc and depth zTop.
func NewPointSurface(loc geo.Location, zTop float64) *PointSurface {
	return &PointSurface{loc: loc, zTop: zTop}
}

// Dip returns 90; point ruptures are treated as vertical.
func (s *PointSurface) Dip() float64 { return 90 }

// Width returns 0.
func (s *PointSurface) Width() float64 { return 0 }

// Depth returns the point depth in kilometers.
func (s *PointSurface) Depth() float64 { return s.zTop }

// DistanceTo computes distances to the point rupture.
func (s *PointSurface) DistanceTo(loc geo.Location) Distance {
	return pointDistance(loc, s.loc, s.zTop)
}

func pointDistance(site, src geo.Location, zTop float64) Distance {
	r := geo.DistanceFast(site, src)
	return Distance{RJB: r, RRup: math.Hypot(r, zTop), RX: r}
}
