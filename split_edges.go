package osm2graph

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Way is a scraped OSM way: an ordered node sequence plus tags. Node
// identifiers absent from the node table must be filtered out before the way
// reaches the builder, and ways reduced below 2 nodes dropped.
type Way struct {
	ID      osm.WayID
	NodeIDs []osm.NodeID
	TagMap  osm.Tags
}

// GraphFromScrapedOSM splits ways into edges at topological junctions, then
// projects all geometry into a local planar frame and computes the convex
// boundary polygon.
func GraphFromScrapedOSM(nodeMapping map[osm.NodeID]orb.Point, ways []Way, verbose bool) *Graph {
	if verbose {
		fmt.Printf("Splitting %d ways into edges... ", len(ways))
	}
	st := time.Now()
	graph := splitEdges(nodeMapping, ways)
	if verbose {
		fmt.Printf("Done in %v\n\tEdges: %d\n\tIntersections: %d\n", time.Since(st), len(graph.Edges), len(graph.Intersections))
	}

	collection := graph.geometryCollection()
	graph.Projection = FitProjection(collection)
	for _, edge := range graph.Edges {
		graph.Projection.ProjectLineString(edge.Geom)
	}
	for _, intersection := range graph.Intersections {
		intersection.Point = graph.Projection.ProjectPoint(intersection.Point)
	}
	graph.Projection.ProjectCollection(collection)
	graph.BoundaryPolygon = convexHull(collection)
	return graph
}

func (graph *Graph) geometryCollection() orb.Collection {
	collection := make(orb.Collection, 0, len(graph.Edges)+len(graph.Intersections))
	for _, edge := range graph.Edges {
		collection = append(collection, edge.Geom.Clone())
	}
	for _, intersection := range graph.Intersections {
		collection = append(collection, intersection.Point)
	}
	return collection
}

func splitEdges(nodeMapping map[osm.NodeID]orb.Point, ways []Way) *Graph {
	// How many ways reference each node. A node referenced more than once is a
	// true topological junction.
	nodeUseCount := make(map[osm.NodeID]int)
	for _, way := range ways {
		for _, nodeID := range way.NodeIDs {
			nodeUseCount[nodeID]++
		}
	}

	graph := &Graph{
		Edges:         make(map[EdgeID]*Edge),
		Intersections: make(map[IntersectionID]*Intersection),
		nodeToEdge:    make(map[osm.NodeID]EdgeID),
	}
	nodeToIntersection := make(map[osm.NodeID]IntersectionID)
	var nextEdgeID EdgeID
	var nextIntersectionID IntersectionID

	for _, way := range ways {
		sourceNodeID := way.NodeIDs[0]
		pendingNodeIDs := []osm.NodeID{}
		pts := orb.LineString{}

		for idx, nodeID := range way.NodeIDs {
			pts = append(pts, nodeMapping[nodeID])
			pendingNodeIDs = append(pendingNodeIDs, nodeID)
			// Edges start and end at junctions between ways. The endpoints of
			// the way itself count too.
			isEndpoint := idx == 0 || idx == len(way.NodeIDs)-1 || nodeUseCount[nodeID] > 1
			if !isEndpoint || len(pts) < 2 {
				continue
			}

			edgeID := nextEdgeID
			nextEdgeID++

			boundary := [2]struct {
				nodeID osm.NodeID
				point  orb.Point
			}{
				{sourceNodeID, pts[0]},
				{nodeID, pts[len(pts)-1]},
			}
			var intersectionIDs [2]IntersectionID
			for i, b := range boundary {
				intersectionID, ok := nodeToIntersection[b.nodeID]
				if !ok {
					intersectionID = nextIntersectionID
					nextIntersectionID++
					graph.Intersections[intersectionID] = &Intersection{
						ID:        intersectionID,
						OSMNodeID: b.nodeID,
						Point:     b.point,
					}
					nodeToIntersection[b.nodeID] = intersectionID
				}
				intersection := graph.Intersections[intersectionID]
				intersection.Edges = append(intersection.Edges, edgeID)
				intersectionIDs[i] = intersectionID
			}

			graph.Edges[edgeID] = &Edge{
				ID:           edgeID,
				Source:       intersectionIDs[0],
				Target:       intersectionIDs[1],
				OSMWayID:     way.ID,
				SourceNodeID: sourceNodeID,
				TargetNodeID: nodeID,
				TagMap:       way.TagMap,
				Geom:         pts,
			}
			for _, visited := range pendingNodeIDs {
				graph.nodeToEdge[visited] = edgeID
			}

			// Start the next edge from here, sharing exactly one coordinate
			sourceNodeID = nodeID
			pts = orb.LineString{nodeMapping[nodeID]}
			pendingNodeIDs = []osm.NodeID{nodeID}
		}
	}

	return graph
}
