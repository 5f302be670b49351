package osm2graph

import (
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/exp/slices"
)

const (
	earthR = 20037508.34
)

func epsg4326To3857(lon, lat float64) (float64, float64) {
	x := lon * earthR / 180
	y := math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * earthR / 180
	return x, y
}

func epsg3857To4326(x, y float64) (float64, float64) {
	lon := x * 180 / earthR
	lat := math.Atan(math.Exp(y*math.Pi/earthR))*360/math.Pi - 90
	return lon, lat
}

// Projection maps longitude/latitude into a local planar frame anchored at the
// south-west corner of the extent it was fitted to, so projected coordinates
// stay small.
type Projection struct {
	Bound   orb.Bound
	OffsetX float64
	OffsetY float64
}

// FitProjection derives a planar frame from the bounding extent of the given
// geometry.
func FitProjection(collection orb.Collection) *Projection {
	bound := collection.Bound()
	offsetX, offsetY := epsg4326To3857(bound.Min.X(), bound.Min.Y())
	return &Projection{
		Bound:   bound,
		OffsetX: offsetX,
		OffsetY: offsetY,
	}
}

// ProjectPoint converts a lon/lat point into the planar frame.
func (projection *Projection) ProjectPoint(pt orb.Point) orb.Point {
	x, y := epsg4326To3857(pt.Lon(), pt.Lat())
	return orb.Point{x - projection.OffsetX, y - projection.OffsetY}
}

// UnprojectPoint converts a planar point back to lon/lat.
func (projection *Projection) UnprojectPoint(pt orb.Point) orb.Point {
	lon, lat := epsg3857To4326(pt.X()+projection.OffsetX, pt.Y()+projection.OffsetY)
	return orb.Point{lon, lat}
}

// ProjectLineString converts a linestring into the planar frame in place.
func (projection *Projection) ProjectLineString(line orb.LineString) {
	for i, pt := range line {
		line[i] = projection.ProjectPoint(pt)
	}
}

// ProjectCollection converts every geometry of a collection into the planar
// frame in place.
func (projection *Projection) ProjectCollection(collection orb.Collection) {
	for i, geometry := range collection {
		switch geom := geometry.(type) {
		case orb.Point:
			collection[i] = projection.ProjectPoint(geom)
		case orb.LineString:
			projection.ProjectLineString(geom)
		case orb.MultiPoint:
			for j, pt := range geom {
				geom[j] = projection.ProjectPoint(pt)
			}
		default:
			panic("projection: unsupported geometry type in collection")
		}
	}
}

// convexHull returns the convex hull of all points of the collection as a
// closed polygon. Monotone chain; panics on empty input since a graph with no
// geometry at all violates the construction contract.
func convexHull(collection orb.Collection) orb.Polygon {
	pts := []orb.Point{}
	for _, geometry := range collection {
		switch geom := geometry.(type) {
		case orb.Point:
			pts = append(pts, geom)
		case orb.LineString:
			pts = append(pts, geom...)
		case orb.MultiPoint:
			pts = append(pts, geom...)
		}
	}
	if len(pts) == 0 {
		panic("convex hull: no points to build boundary polygon")
	}

	sortPointsXY(pts)
	pts = dedupPoints(pts)
	if len(pts) < 3 {
		// Degenerate hull, still a closed ring
		ring := orb.Ring{}
		ring = append(ring, pts...)
		ring = append(ring, pts[0])
		return orb.Polygon{ring}
	}

	cross := func(o, a, b orb.Point) float64 {
		return (a.X()-o.X())*(b.Y()-o.Y()) - (a.Y()-o.Y())*(b.X()-o.X())
	}

	var lower []orb.Point
	for _, pt := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], pt) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, pt)
	}
	var upper []orb.Point
	for i := len(pts) - 1; i >= 0; i-- {
		pt := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], pt) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, pt)
	}

	ring := orb.Ring{}
	ring = append(ring, lower...)
	ring = append(ring, upper[1:]...)
	return orb.Polygon{ring}
}

// sortPointsXY orders points lexicographically by (x, y)
func sortPointsXY(pts []orb.Point) {
	slices.SortFunc(pts, func(a, b orb.Point) int {
		if a.X() != b.X() {
			if a.X() < b.X() {
				return -1
			}
			return 1
		}
		if a.Y() != b.Y() {
			if a.Y() < b.Y() {
				return -1
			}
			return 1
		}
		return 0
	})
}

func dedupPoints(pts []orb.Point) []orb.Point {
	out := pts[:1]
	for _, pt := range pts[1:] {
		if pt != out[len(out)-1] {
			out = append(out, pt)
		}
	}
	return out
}
