package geo

import (
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// metersPerDegreeLat is the length of one degree of latitude. Longitude
// degrees are scaled by the cosine of the latitude. Good enough for city-scale
// delivery zones; the values only feed containment checks and area tie-breaks.
const metersPerDegreeLat = 111194.9

// Boundary is the geographic shape of a delivery zone. Implementations must
// be deterministic: identical inputs always yield identical results.
type Boundary interface {
	// Contains reports whether the point lies inside the boundary. Points
	// exactly on the edge are implementation-defined; callers must not
	// depend on either outcome.
	Contains(point kernel.GeoPoint) bool
	// Area returns the approximate covered area in square meters. Used only
	// to break priority ties between overlapping zones.
	Area() float64
	// Validate checks the boundary was properly constructed.
	Validate() error
}

// CircleBoundary is a zone shaped as a radius around a center point.
type CircleBoundary struct {
	center       kernel.GeoPoint
	radiusMeters float64
	guard        guard.ConstructorGuard
}

// NewCircleBoundary creates a circular boundary. The radius must be positive.
func NewCircleBoundary(center kernel.GeoPoint, radiusMeters float64) (CircleBoundary, error) {
	if err := center.Validate(); err != nil {
		return CircleBoundary{}, err
	}
	if radiusMeters <= 0 {
		return CircleBoundary{}, errs.NewValueIsInvalidError("radiusMeters must be positive")
	}

	return CircleBoundary{
		center:       center,
		radiusMeters: radiusMeters,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the CircleBoundary was properly constructed.
func (c CircleBoundary) Validate() error {
	return c.guard.Validate(errs.NewValueIsRequiredError(
		"CircleBoundary must be created via NewCircleBoundary constructor"))
}

// Center returns the circle's center point.
func (c CircleBoundary) Center() kernel.GeoPoint {
	return c.center
}

// RadiusMeters returns the circle's radius in meters.
func (c CircleBoundary) RadiusMeters() float64 {
	return c.radiusMeters
}

// Contains reports whether the point lies within the radius of the center.
// Points at exactly the radius count as inside.
func (c CircleBoundary) Contains(point kernel.GeoPoint) bool {
	distance, err := c.center.DistanceTo(point)
	if err != nil {
		return false
	}
	return distance <= c.radiusMeters
}

// Area returns the circle's area in square meters.
func (c CircleBoundary) Area() float64 {
	return math.Pi * c.radiusMeters * c.radiusMeters
}

// PolygonBoundary is a zone shaped as a closed polygon of vertices. The last
// vertex is implicitly connected back to the first.
type PolygonBoundary struct {
	vertices []kernel.GeoPoint
	guard    guard.ConstructorGuard
}

// NewPolygonBoundary creates a polygonal boundary from at least three vertices.
func NewPolygonBoundary(vertices []kernel.GeoPoint) (PolygonBoundary, error) {
	if len(vertices) < 3 {
		return PolygonBoundary{}, errs.NewValueIsInvalidError("polygon requires at least 3 vertices")
	}

	for _, v := range vertices {
		if err := v.Validate(); err != nil {
			return PolygonBoundary{}, err
		}
	}

	out := make([]kernel.GeoPoint, len(vertices))
	copy(out, vertices)
	return PolygonBoundary{
		vertices: out,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the PolygonBoundary was properly constructed.
func (p PolygonBoundary) Validate() error {
	return p.guard.Validate(errs.NewValueIsRequiredError(
		"PolygonBoundary must be created via NewPolygonBoundary constructor"))
}

// Vertices returns a copy of the polygon's vertices.
func (p PolygonBoundary) Vertices() []kernel.GeoPoint {
	out := make([]kernel.GeoPoint, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// Contains reports whether the point lies inside the polygon, using the
// even-odd ray casting rule over latitude/longitude coordinates. A point
// exactly on an edge or vertex may land on either side, subject to floating
// point rounding.
func (p PolygonBoundary) Contains(point kernel.GeoPoint) bool {
	lat, lon := point.Lat(), point.Lon()
	inside := false

	j := len(p.vertices) - 1
	for i := 0; i < len(p.vertices); i++ {
		latI, lonI := p.vertices[i].Lat(), p.vertices[i].Lon()
		latJ, lonJ := p.vertices[j].Lat(), p.vertices[j].Lon()

		if (latI > lat) != (latJ > lat) &&
			lon <= (lonJ-lonI)*(lat-latI)/(latJ-latI)+lonI {
			inside = !inside
		}
		j = i
	}

	return inside
}

// Area returns the polygon's approximate area in square meters, computed with
// the shoelace formula on an equirectangular projection around the polygon's
// mean latitude.
func (p PolygonBoundary) Area() float64 {
	var meanLat float64
	for _, v := range p.vertices {
		meanLat += v.Lat()
	}
	meanLat /= float64(len(p.vertices))
	metersPerDegreeLon := metersPerDegreeLat * math.Cos(meanLat*math.Pi/180)

	var sum float64
	j := len(p.vertices) - 1
	for i := 0; i < len(p.vertices); i++ {
		xI := p.vertices[i].Lon() * metersPerDegreeLon
		yI := p.vertices[i].Lat() * metersPerDegreeLat
		xJ := p.vertices[j].Lon() * metersPerDegreeLon
		yJ := p.vertices[j].Lat() * metersPerDegreeLat
		sum += xJ*yI - xI*yJ
		j = i
	}

	return math.Abs(sum) / 2
}
