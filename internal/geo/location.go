// Package geo provides the minimal geodetic surface needed by the hazard
// calculation: WGS-84 locations and fast site-to-source distance math.
package geo

import "math"

// EarthRadius is the mean earth radius in kilometers.
const EarthRadius = 6371.0072

// Location is a WGS-84 latitude/longitude pair with depth in kilometers
// (positive down).
type Location struct {
	Lat   float64 `json:"lat" yaml:"lat"`
	Lon   float64 `json:"lon" yaml:"lon"`
	Depth float64 `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// NewLocation is a shorthand constructor for a surface Location.
func NewLocation(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon}
}

// Valid reports whether the location is within geographic bounds.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 360
}

// Distance returns the great-circle (haversine) distance in kilometers
// between a and b, ignoring depth.
func Distance(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// DistanceFast returns the equirectangular-approximation distance in
// kilometers between a and b. Accurate to well under 1% at the ranges
// relevant to hazard (R < 1000 km) and much cheaper than haversine.
func DistanceFast(a, b Location) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180 * math.Cos((a.Lat+b.Lat)/2*math.Pi/180)
	return EarthRadius * math.Hypot(dLat, dLon)
}

// Vec2 is a point in a local planar (east, north) frame in kilometers.
type Vec2 struct {
	X float64 // east
	Y float64 // north
}

// ToPlane projects loc into a planar frame centered on origin using an
// equirectangular projection. Good for the short ranges used in rupture
// distance math.
func ToPlane(origin, loc Location) Vec2 {
	y := (loc.Lat - origin.Lat) * math.Pi / 180 * EarthRadius
	x := (loc.Lon - origin.Lon) * math.Pi / 180 * EarthRadius *
		math.Cos((origin.Lat+loc.Lat)/2*math.Pi/180)
	return Vec2{X: x, Y: y}
}

// Sub returns v - w.
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

// Dot returns the dot product of v and w.
func (v Vec2) Dot(w Vec2) float64 { return v.X*w.X + v.Y*w.Y }

// Cross returns the z-component of the 3D cross product.
func (v Vec2) Cross(w Vec2) float64 { return v.X*w.Y - v.Y*w.X }

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// SegmentDistance returns the distance from point p to segment ab, together
// with the clamped projection parameter t in [0,1].
func SegmentDistance(p, a, b Vec2) (float64, float64) {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den == 0 {
		return p.Sub(a).Length(), 0
	}
	t := p.Sub(a).Dot(ab) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := Vec2{a.X + t*ab.X, a.Y + t*ab.Y}
	return p.Sub(closest).Length(), t
}
