package osm2graph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
)

type countingObserver struct {
	nodes    int
	ways     int
	wayNodes map[osm.WayID]int
}

func (observer *countingObserver) OnNode(osm.NodeID, orb.Point, osm.Tags) {
	observer.nodes++
}

func (observer *countingObserver) OnWay(id osm.WayID, nodeIDs []osm.NodeID, _ map[osm.NodeID]orb.Point, _ osm.Tags) {
	observer.ways++
	observer.wayNodes[id] = len(nodeIDs)
}

func TestImportFromOSMFile(t *testing.T) {
	observer := &countingObserver{wayNodes: map[osm.WayID]int{}}
	graph, err := ImportFromOSMFile("./testdata/sample.osm", WithObserver(observer))
	if err != nil {
		t.Fatal(err)
	}

	// Way 100 stays whole, way 200 splits at the shared node, the waterway is
	// filtered out and way 400 shrinks below 2 known nodes
	assert.Len(t, graph.Edges, 3)
	assert.Len(t, graph.Intersections, 4)

	for _, edge := range graph.Edges {
		assert.NotEqual(t, osm.WayID(300), edge.OSMWayID)
		assert.NotEqual(t, osm.WayID(400), edge.OSMWayID)
	}

	// Tags survive onto the edges untouched
	named := 0
	for _, edge := range graph.Edges {
		if edge.OSMWayID == 100 {
			assert.Equal(t, "First street", edge.TagMap.Find("name"))
			named++
		}
	}
	assert.Equal(t, 1, named)

	assert.NotNil(t, graph.Projection)
	assert.NotEmpty(t, graph.BoundaryPolygon)

	// The observer sees every decoded element, filtered or not
	assert.Equal(t, 6, observer.nodes)
	assert.Equal(t, 4, observer.ways)
	// Way 400 reaches the observer with its unknown reference already dropped
	assert.Equal(t, 1, observer.wayNodes[400])
}

func TestImportFromOSMFileKeepEdge(t *testing.T) {
	graph, err := ImportFromOSMFile(
		"./testdata/sample.osm",
		WithKeepEdge(KeepHighways("service")),
	)
	if err != nil {
		t.Fatal(err)
	}

	// Only way 200 passes the filter; without way 100 sharing node 3 is no
	// longer a junction, so the way is not split
	assert.Len(t, graph.Edges, 1)
	assert.Len(t, graph.Intersections, 2)
}

func TestImportFromOSMFileMissing(t *testing.T) {
	_, err := ImportFromOSMFile("./testdata/no_such_file.osm")
	assert.Error(t, err)
}
