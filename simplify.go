package osm2graph

// CollapseGraphEdges materializes every edge of the graph as a keyed
// linestring scoped by its highway class, then reduces chains of degree-2
// connections and closes two-segment loops. The result keeps each underlying
// EdgeID with the direction it is traversed in, so the detailed semantic path
// stays recoverable. The graph itself is not modified.
func CollapseGraphEdges(graph *Graph) []KeyedLineString[EdgeID, string] {
	lines := make([]KeyedLineString[EdgeID, string], 0, len(graph.Edges))
	for _, edge := range graph.Edges {
		lines = append(lines, KeyedLineString[EdgeID, string]{
			Geom: edge.Geom.Clone(),
			IDs:  []DirectedID[EdgeID]{{ID: edge.ID, Forward: true}},
			Key:  edge.TagMap.Find("highway"),
		})
	}
	return CollapseLoops(CollapseDegree2(lines))
}
