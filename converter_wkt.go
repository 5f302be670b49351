package osm2graph

import (
	"github.com/paulmach/orb/encoding/wkt"
)

// PrepareWKTLinestring returns WKT representation of an edge geometry
func (edge *Edge) PrepareWKTLinestring() string {
	return wkt.MarshalString(edge.Geom)
}

// PrepareWKTPoint returns WKT representation of an intersection location
func (intersection *Intersection) PrepareWKTPoint() string {
	return wkt.MarshalString(intersection.Point)
}
