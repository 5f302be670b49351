package osm2graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// FeedObserver receives every decoded node and way while an OSM source is
// scanned, before any filtering decides what reaches the graph. Relations and
// bounds are ignored by contract.
type FeedObserver interface {
	OnNode(id osm.NodeID, pt orb.Point, tags osm.Tags)
	OnWay(id osm.WayID, nodeIDs []osm.NodeID, nodeMapping map[osm.NodeID]orb.Point, tags osm.Tags)
}

// NullObserver ignores everything
type NullObserver struct{}

func (NullObserver) OnNode(osm.NodeID, orb.Point, osm.Tags) {}
func (NullObserver) OnWay(osm.WayID, []osm.NodeID, map[osm.NodeID]orb.Point, osm.Tags) {
}

// ImportFromOSMFile reads an OSM file (PBF or XML, guessed from the
// extension), scrapes nodes and ways and builds the topological graph.
func ImportFromOSMFile(filename string, options ...ImportOption) (*Graph, error) {
	settings := defaultImportSettings()
	for _, option := range options {
		option(settings)
	}

	if settings.verbose {
		fmt.Printf("Opening file: '%s'...\n", filename)
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer file.Close()

	var scanner OSMScanner
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		scanner = osmxml.New(context.Background(), file)
	case ".pbf", ".osm.pbf":
		scanner = osmpbf.New(context.Background(), file, 4)
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
	defer scanner.Close()

	nodeMapping, ways, err := scrapeOSM(scanner, settings)
	if err != nil {
		return nil, err
	}
	return GraphFromScrapedOSM(nodeMapping, ways, settings.verbose), nil
}

// scrapeOSM runs one pass over the source. OSM files order nodes before the
// ways referencing them, so the node table is complete by the time ways
// arrive.
func scrapeOSM(scanner OSMScanner, settings *importSettings) (map[osm.NodeID]orb.Point, []Way, error) {
	if settings.verbose {
		fmt.Printf("\tScanning nodes and ways... ")
	}
	st := time.Now()

	nodeMapping := make(map[osm.NodeID]orb.Point)
	ways := []Way{}

	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			pt := orb.Point{obj.Lon, obj.Lat}
			nodeMapping[obj.ID] = pt
			settings.observer.OnNode(obj.ID, pt, obj.Tags)
		case *osm.Way:
			nodeIDs := make([]osm.NodeID, 0, len(obj.Nodes))
			for _, wayNode := range obj.Nodes {
				if _, ok := nodeMapping[wayNode.ID]; ok {
					nodeIDs = append(nodeIDs, wayNode.ID)
				}
			}
			if len(nodeIDs) != len(obj.Nodes) {
				// Happens with extracts cut along an area boundary
				slog.Warn("way refers to nodes outside the imported area", "way", obj.ID, "dropped", len(obj.Nodes)-len(nodeIDs))
			}

			settings.observer.OnWay(obj.ID, nodeIDs, nodeMapping, obj.Tags)

			if len(nodeIDs) >= 2 && settings.keepEdge(obj.Tags) {
				tags := make(osm.Tags, len(obj.Tags))
				copy(tags, obj.Tags)
				ways = append(ways, Way{
					ID:      obj.ID,
					NodeIDs: nodeIDs,
					TagMap:  tags,
				})
			}
		}
	}
	if scanner.Err() != nil {
		return nil, nil, errors.Wrap(scanner.Err(), "Scanner error")
	}

	if settings.verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n\tWays kept: %d\n", time.Since(st), len(nodeMapping), len(ways))
	}
	return nodeMapping, ways, nil
}
