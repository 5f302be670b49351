package osm2graph

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// EdgeID is an identifier of a single edge. It is unique within one Graph but
// not dense until CompactIDs() has been called.
type EdgeID int64

// IntersectionID is an identifier of a single intersection. Same uniqueness
// and density rules as EdgeID.
type IntersectionID int64

// Edge is a maximal piece of an OSM way between two intersections. It is
// directed by construction (Source -> Target) but semantically undirected.
type Edge struct {
	ID     EdgeID
	Source IntersectionID
	Target IntersectionID

	// Provenance of the edge in OSM terms
	OSMWayID     osm.WayID
	SourceNodeID osm.NodeID
	TargetNodeID osm.NodeID
	TagMap       osm.Tags

	// Ordered points from Source to Target inclusive. Always has at least 2 points.
	Geom orb.LineString
}

// Intersection is a node in the graph sense: a point where two or more ways
// meet, or an endpoint of a way. It happens to correspond to one OSM node.
type Intersection struct {
	ID        IntersectionID
	OSMNodeID osm.NodeID
	Point     orb.Point

	// Incident edges. Length of this slice is the topological degree.
	Edges []EdgeID
}

// Graph is the result of splitting OSM ways into edges. It owns all edges and
// intersections; they reference each other only through identifiers resolved
// via the owning maps.
type Graph struct {
	Edges         map[EdgeID]*Edge
	Intersections map[IntersectionID]*Intersection

	// Which edge an OSM node currently lies on. A node interior to an edge maps
	// to that edge; every key names an edge present in Edges.
	nodeToEdge map[osm.NodeID]EdgeID

	// All geometry is kept in the planar frame of Projection after import
	Projection      *Projection
	BoundaryPolygon orb.Polygon
}

// EdgeForNode returns the edge an OSM node currently lies on, if any.
func (graph *Graph) EdgeForNode(nodeID osm.NodeID) (EdgeID, bool) {
	edgeID, ok := graph.nodeToEdge[nodeID]
	return edgeID, ok
}

// LengthMeters returns the planar length of the edge geometry. Only
// meaningful after the graph has been projected.
func (edge *Edge) LengthMeters() float64 {
	return planar.Length(edge.Geom)
}

// RemoveEdges deletes the given edges from the graph, unlinks them from their
// boundary intersections and then prunes every intersection left with no
// incident edges as well as every node index entry pointing at a deleted edge.
// Handles self-loops (Source == Target) and sets of edges sharing an
// intersection.
//
// Every identifier in the set must name an edge present in the graph;
// panics otherwise.
func (graph *Graph) RemoveEdges(edgeIDs map[EdgeID]struct{}) {
	for edgeID := range edgeIDs {
		edge, ok := graph.Edges[edgeID]
		if !ok {
			panic(fmt.Sprintf("remove edges: edge %d is not in the graph", edgeID))
		}
		delete(graph.Edges, edgeID)
		graph.Intersections[edge.Source].detachEdge(edgeID)
		if edge.Target != edge.Source {
			graph.Intersections[edge.Target].detachEdge(edgeID)
		}
	}
	for intersectionID, intersection := range graph.Intersections {
		if len(intersection.Edges) == 0 {
			delete(graph.Intersections, intersectionID)
		}
	}
	for nodeID, edgeID := range graph.nodeToEdge {
		if _, ok := graph.Edges[edgeID]; !ok {
			delete(graph.nodeToEdge, nodeID)
		}
	}
}

func (intersection *Intersection) detachEdge(edgeID EdgeID) {
	kept := intersection.Edges[:0]
	for _, incident := range intersection.Edges {
		if incident != edgeID {
			kept = append(kept, incident)
		}
	}
	intersection.Edges = kept
}

// CompactIDs reassigns every edge and intersection identifier to dense values
// 0..N, keeping the relative order of the original identifiers, and rewrites
// every cross-reference (Edge.Source/Target, Intersection.Edges, node index).
// After this call identifiers can be used directly as slice indices. Any
// identifier cached outside the graph before the call becomes meaningless.
func (graph *Graph) CompactIDs() {
	oldEdgeIDs := maps.Keys(graph.Edges)
	slices.Sort(oldEdgeIDs)
	newEdgeIDs := make(map[EdgeID]EdgeID, len(oldEdgeIDs))
	for i, oldID := range oldEdgeIDs {
		newEdgeIDs[oldID] = EdgeID(i)
	}

	oldIntersectionIDs := maps.Keys(graph.Intersections)
	slices.Sort(oldIntersectionIDs)
	newIntersectionIDs := make(map[IntersectionID]IntersectionID, len(oldIntersectionIDs))
	for i, oldID := range oldIntersectionIDs {
		newIntersectionIDs[oldID] = IntersectionID(i)
	}

	edges := make(map[EdgeID]*Edge, len(graph.Edges))
	for _, edge := range graph.Edges {
		edge.ID = newEdgeIDs[edge.ID]
		edge.Source = newIntersectionIDs[edge.Source]
		edge.Target = newIntersectionIDs[edge.Target]
		edges[edge.ID] = edge
	}
	graph.Edges = edges

	intersections := make(map[IntersectionID]*Intersection, len(graph.Intersections))
	for _, intersection := range graph.Intersections {
		intersection.ID = newIntersectionIDs[intersection.ID]
		for i, edgeID := range intersection.Edges {
			intersection.Edges[i] = newEdgeIDs[edgeID]
		}
		intersections[intersection.ID] = intersection
	}
	graph.Intersections = intersections

	for nodeID, edgeID := range graph.nodeToEdge {
		graph.nodeToEdge[nodeID] = newEdgeIDs[edgeID]
	}
}
