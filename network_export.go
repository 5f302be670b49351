package osm2graph

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ExportToCSV writes the graph into two CSV files, one for edges and one for
// intersections. E.g. for 'map.csv' the files 'map_edges.csv' and
// 'map_intersections.csv' are produced.
func (graph *Graph) ExportToCSV(fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameEdges := fmt.Sprintf(fnameParts[0] + "_edges.csv")
	fnameIntersections := fmt.Sprintf(fnameParts[0] + "_intersections.csv")

	err := graph.exportEdgesToCSV(fnameEdges)
	if err != nil {
		return errors.Wrap(err, "Can't export edges")
	}

	err = graph.exportIntersectionsToCSV(fnameIntersections)
	if err != nil {
		return errors.Wrap(err, "Can't export intersections")
	}

	return nil
}

func (graph *Graph) exportEdgesToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "source_intersection", "target_intersection", "osm_way_id", "osm_source_node", "osm_target_node", "highway", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	edgeIDs := maps.Keys(graph.Edges)
	slices.Sort(edgeIDs)
	for _, edgeID := range edgeIDs {
		edge := graph.Edges[edgeID]
		err = writer.Write([]string{
			fmt.Sprintf("%d", edge.ID),
			fmt.Sprintf("%d", edge.Source),
			fmt.Sprintf("%d", edge.Target),
			fmt.Sprintf("%d", edge.OSMWayID),
			fmt.Sprintf("%d", edge.SourceNodeID),
			fmt.Sprintf("%d", edge.TargetNodeID),
			edge.TagMap.Find("highway"),
			edge.PrepareWKTLinestring(),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write edge")
		}
	}
	return nil
}

func (graph *Graph) exportIntersectionsToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "osm_node_id", "degree", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	intersectionIDs := maps.Keys(graph.Intersections)
	slices.Sort(intersectionIDs)
	for _, intersectionID := range intersectionIDs {
		intersection := graph.Intersections[intersectionID]
		err = writer.Write([]string{
			fmt.Sprintf("%d", intersection.ID),
			fmt.Sprintf("%d", intersection.OSMNodeID),
			fmt.Sprintf("%d", len(intersection.Edges)),
			intersection.PrepareWKTPoint(),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write intersection")
		}
	}
	return nil
}
