package osm2graph

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ExportToGeoJSON returns the graph as a GeoJSON feature collection: one
// LineString feature per edge carrying its provenance, one Point feature per
// intersection and one Polygon feature for the boundary.
func (graph *Graph) ExportToGeoJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	for _, edge := range graph.Edges {
		feature := geojson.NewFeature(geojson.NewLineStringGeometry(lineTo2D(edge.Geom)))
		feature.SetProperty("id", int64(edge.ID))
		feature.SetProperty("source", int64(edge.Source))
		feature.SetProperty("target", int64(edge.Target))
		feature.SetProperty("osm_way_id", int64(edge.OSMWayID))
		feature.SetProperty("highway", edge.TagMap.Find("highway"))
		fc.AddFeature(feature)
	}

	for _, intersection := range graph.Intersections {
		feature := geojson.NewFeature(geojson.NewPointGeometry([]float64{intersection.Point.X(), intersection.Point.Y()}))
		feature.SetProperty("id", int64(intersection.ID))
		feature.SetProperty("osm_node_id", int64(intersection.OSMNodeID))
		feature.SetProperty("degree", len(intersection.Edges))
		fc.AddFeature(feature)
	}

	if len(graph.BoundaryPolygon) > 0 {
		rings := make([][][]float64, len(graph.BoundaryPolygon))
		for i, ring := range graph.BoundaryPolygon {
			rings[i] = lineTo2D(orb.LineString(ring))
		}
		boundary := geojson.NewFeature(geojson.NewPolygonGeometry(rings))
		boundary.SetProperty("boundary", true)
		fc.AddFeature(boundary)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal feature collection")
	}
	return data, nil
}

func lineTo2D(line orb.LineString) [][]float64 {
	pts2d := make([][]float64, len(line))
	for i, pt := range line {
		pts2d[i] = []float64{pt.X(), pt.Y()}
	}
	return pts2d
}
