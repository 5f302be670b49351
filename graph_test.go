package osm2graph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
)

// Two ways crossing at node 3:
//
//	1 -- 2 -- 3 -- 4 -- 5
//	          |
//	6 --------+--------- 7
func crossingWays() (map[osm.NodeID]orb.Point, []Way) {
	nodeMapping := map[osm.NodeID]orb.Point{
		1: {37.640, 55.750},
		2: {37.641, 55.750},
		3: {37.642, 55.750},
		4: {37.643, 55.750},
		5: {37.644, 55.750},
		6: {37.642, 55.749},
		7: {37.642, 55.751},
	}
	ways := []Way{
		{ID: 100, NodeIDs: []osm.NodeID{1, 2, 3, 4, 5}, TagMap: osm.Tags{{Key: "highway", Value: "residential"}}},
		{ID: 200, NodeIDs: []osm.NodeID{6, 3, 7}, TagMap: osm.Tags{{Key: "highway", Value: "service"}}},
	}
	return nodeMapping, ways
}

func TestSplitEdgesCrossing(t *testing.T) {
	nodeMapping, ways := crossingWays()
	graph := splitEdges(nodeMapping, ways)

	// Way 100 splits at node 3, way 200 splits there too
	assert.Len(t, graph.Edges, 4)
	// Way endpoints 1, 5, 6, 7 plus the junction at 3
	assert.Len(t, graph.Intersections, 5)

	junctionSeen := false
	for _, intersection := range graph.Intersections {
		if intersection.OSMNodeID == 3 {
			junctionSeen = true
			assert.Len(t, intersection.Edges, 4)
		} else {
			assert.Len(t, intersection.Edges, 1)
		}
	}
	assert.True(t, junctionSeen)

	for _, edge := range graph.Edges {
		assert.GreaterOrEqual(t, len(edge.Geom), 2)
		source := graph.Intersections[edge.Source]
		target := graph.Intersections[edge.Target]
		assert.Equal(t, source.Point, edge.Geom[0])
		assert.Equal(t, target.Point, edge.Geom[len(edge.Geom)-1])
	}

	// Interior node 2 lies on the first edge of way 100
	edgeID, ok := graph.EdgeForNode(2)
	assert.True(t, ok)
	assert.Equal(t, osm.WayID(100), graph.Edges[edgeID].OSMWayID)
	assert.Equal(t, osm.NodeID(1), graph.Edges[edgeID].SourceNodeID)
	assert.Equal(t, osm.NodeID(3), graph.Edges[edgeID].TargetNodeID)
}

func TestSplitEdgesSingleWay(t *testing.T) {
	// No internal junctions: the whole way becomes one edge, both dead ends
	// become intersections
	nodeMapping := map[osm.NodeID]orb.Point{
		1: {37.640, 55.750},
		2: {37.641, 55.750},
		3: {37.642, 55.750},
	}
	ways := []Way{{ID: 100, NodeIDs: []osm.NodeID{1, 2, 3}}}
	graph := splitEdges(nodeMapping, ways)

	assert.Len(t, graph.Edges, 1)
	assert.Len(t, graph.Intersections, 2)
	for _, edge := range graph.Edges {
		assert.Len(t, edge.Geom, 3)
		assert.NotEqual(t, edge.Source, edge.Target)
	}
}

func TestSplitEdgesClosedWay(t *testing.T) {
	// A ring whose endpoints are the same node: one self-loop edge, one
	// intersection of degree 2
	nodeMapping := map[osm.NodeID]orb.Point{
		1: {37.640, 55.750},
		2: {37.641, 55.750},
		3: {37.641, 55.751},
	}
	ways := []Way{{ID: 100, NodeIDs: []osm.NodeID{1, 2, 3, 1}}}
	graph := splitEdges(nodeMapping, ways)

	assert.Len(t, graph.Edges, 1)
	assert.Len(t, graph.Intersections, 1)
	for _, edge := range graph.Edges {
		assert.Equal(t, edge.Source, edge.Target)
	}
	for _, intersection := range graph.Intersections {
		assert.Len(t, intersection.Edges, 2)
	}
}

func TestRemoveEdges(t *testing.T) {
	nodeMapping, ways := crossingWays()
	graph := splitEdges(nodeMapping, ways)

	// Drop both halves of way 200
	removed := map[EdgeID]struct{}{}
	for edgeID, edge := range graph.Edges {
		if edge.OSMWayID == 200 {
			removed[edgeID] = struct{}{}
		}
	}
	assert.Len(t, removed, 2)
	graph.RemoveEdges(removed)

	assert.Len(t, graph.Edges, 2)
	// Dead ends 6 and 7 lost their only edge and must be gone
	assert.Len(t, graph.Intersections, 3)
	for _, intersection := range graph.Intersections {
		assert.NotEqual(t, osm.NodeID(6), intersection.OSMNodeID)
		assert.NotEqual(t, osm.NodeID(7), intersection.OSMNodeID)
		for _, incident := range intersection.Edges {
			_, gone := removed[incident]
			assert.False(t, gone)
			_, present := graph.Edges[incident]
			assert.True(t, present)
		}
	}

	// The node index must not point at deleted edges anymore
	for _, nodeID := range []osm.NodeID{6, 7} {
		_, ok := graph.EdgeForNode(nodeID)
		assert.False(t, ok)
	}
}

func TestRemoveEdgesSelfLoop(t *testing.T) {
	nodeMapping := map[osm.NodeID]orb.Point{
		1: {37.640, 55.750},
		2: {37.641, 55.750},
		3: {37.641, 55.751},
	}
	ways := []Way{{ID: 100, NodeIDs: []osm.NodeID{1, 2, 3, 1}}}
	graph := splitEdges(nodeMapping, ways)

	graph.RemoveEdges(map[EdgeID]struct{}{0: {}})
	assert.Empty(t, graph.Edges)
	assert.Empty(t, graph.Intersections)
	assert.Empty(t, graph.nodeToEdge)
}

func TestRemoveEdgesUnknownIDPanics(t *testing.T) {
	nodeMapping, ways := crossingWays()
	graph := splitEdges(nodeMapping, ways)

	assert.Panics(t, func() {
		graph.RemoveEdges(map[EdgeID]struct{}{12345: {}})
	})
}

func TestCompactIDs(t *testing.T) {
	nodeMapping, ways := crossingWays()
	graph := splitEdges(nodeMapping, ways)

	// Punch a hole into the identifier space first
	var victim EdgeID
	for edgeID, edge := range graph.Edges {
		if edge.OSMWayID == 200 && edge.SourceNodeID == 6 {
			victim = edgeID
		}
	}
	graph.RemoveEdges(map[EdgeID]struct{}{victim: {}})

	// Remember topology by OSM provenance to compare after compaction
	type span struct {
		way      osm.WayID
		from, to osm.NodeID
	}
	before := map[span]int{}
	for _, edge := range graph.Edges {
		before[span{edge.OSMWayID, edge.SourceNodeID, edge.TargetNodeID}]++
	}

	graph.CompactIDs()

	for i := 0; i < len(graph.Edges); i++ {
		edge, ok := graph.Edges[EdgeID(i)]
		assert.True(t, ok)
		assert.Equal(t, EdgeID(i), edge.ID)
	}
	for i := 0; i < len(graph.Intersections); i++ {
		intersection, ok := graph.Intersections[IntersectionID(i)]
		assert.True(t, ok)
		assert.Equal(t, IntersectionID(i), intersection.ID)
	}

	// Cross-references stay mutually consistent
	after := map[span]int{}
	for _, edge := range graph.Edges {
		after[span{edge.OSMWayID, edge.SourceNodeID, edge.TargetNodeID}]++
		source, ok := graph.Intersections[edge.Source]
		assert.True(t, ok)
		assert.Contains(t, source.Edges, edge.ID)
		target, ok := graph.Intersections[edge.Target]
		assert.True(t, ok)
		assert.Contains(t, target.Edges, edge.ID)
	}
	assert.Equal(t, before, after)

	for nodeID := range graph.nodeToEdge {
		edgeID, _ := graph.EdgeForNode(nodeID)
		_, present := graph.Edges[edgeID]
		assert.True(t, present)
	}
}

func TestGraphFromScrapedOSM(t *testing.T) {
	nodeMapping, ways := crossingWays()
	graph := GraphFromScrapedOSM(nodeMapping, ways, false)

	assert.NotNil(t, graph.Projection)
	assert.Len(t, graph.BoundaryPolygon, 1)
	// Boundary ring is closed
	ring := graph.BoundaryPolygon[0]
	assert.Equal(t, ring[0], ring[len(ring)-1])

	// Geometry is planar now: the fitted frame is anchored at the south-west
	// corner, so no coordinate is negative and none looks like a longitude
	for _, edge := range graph.Edges {
		for _, pt := range edge.Geom {
			assert.GreaterOrEqual(t, pt.X(), 0.0)
			assert.GreaterOrEqual(t, pt.Y(), 0.0)
		}
	}
	for _, intersection := range graph.Intersections {
		assert.GreaterOrEqual(t, intersection.Point.X(), 0.0)
	}
}

func TestCollapseGraphEdges(t *testing.T) {
	nodeMapping, ways := crossingWays()
	graph := GraphFromScrapedOSM(nodeMapping, ways, false)

	// The two keys partition the junction: the residential halves merge with
	// each other and so do the service halves, never across
	lines := CollapseGraphEdges(graph)
	assert.Len(t, lines, 2)

	keys := map[string]int{}
	for _, merged := range lines {
		assert.Len(t, merged.IDs, 2)
		if merged.Key == "residential" {
			assert.Len(t, merged.Geom, 5)
		} else {
			assert.Len(t, merged.Geom, 3)
		}
		keys[merged.Key]++
	}
	assert.Equal(t, map[string]int{"residential": 1, "service": 1}, keys)
}
