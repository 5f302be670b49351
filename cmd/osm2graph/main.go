package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/ch"
	"github.com/geonetwork/osm2graph"
)

var (
	tagStr      = flag.String("tags", "motorway,motorway_link,trunk,trunk_link,primary,primary_link,secondary,secondary_link,tertiary,tertiary_link,residential,unclassified,road", "Set of needed 'highway' tag values (separated by commas). Empty value keeps every way carrying a 'highway' tag")
	osmFileName = flag.String("file", "my_graph.osm.pbf", "Filename of *.osm.pbf (or *.osm XML) file")
	out         = flag.String("out", "my_graph.csv", "Filename of CSV output. E.g.: for 'map.csv' the files 'map_edges.csv' and 'map_intersections.csv' will be produced")
	confFile    = flag.String("conf", "", "Optional YAML config file. Overrides the other flags")
	geojsonOut  = flag.String("geojson", "", "Optional filename for GeoJSON output of the whole graph (including the boundary polygon)")
	doCollapse  = flag.Bool("collapse", false, "Report how far the network reduces when degree-2 chains and loops are collapsed")
	doContract  = flag.Bool("contract", false, "Prepare contraction hierarchies over the compacted graph and export shortcuts")
)

func main() {
	flag.Parse()

	cfg := Config{
		File:     *osmFileName,
		Out:      *out,
		Contract: *doContract,
		Collapse: *doCollapse,
		GeoJSON:  *geojsonOut,
	}
	if *tagStr != "" {
		cfg.Tags = strings.Split(*tagStr, ",")
	}
	if *confFile != "" {
		var err error
		cfg, err = ReadConfig(*confFile)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	graph, err := osm2graph.ImportFromOSMFile(
		cfg.File,
		osm2graph.WithVerbose(true),
		osm2graph.WithKeepEdge(osm2graph.KeepHighways(cfg.Tags...)),
	)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Downstream consumers expect dense index-addressable identifiers
	graph.CompactIDs()

	err = graph.ExportToCSV(cfg.Out)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if cfg.GeoJSON != "" {
		data, err := graph.ExportToGeoJSON()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		err = os.WriteFile(cfg.GeoJSON, data, 0644)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	if cfg.Collapse {
		st := time.Now()
		lines := osm2graph.CollapseGraphEdges(graph)
		fmt.Printf("Collapsed %d edges into %d linestrings in %v\n", len(graph.Edges), len(lines), time.Since(st))
	}

	if cfg.Contract {
		err = prepareContracted(graph, cfg.Out)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}

// prepareContracted hands the compacted graph over to the contraction
// hierarchies library: every intersection becomes a vertex, every edge is
// added in both directions weighted by its planar length.
func prepareContracted(graph *osm2graph.Graph, out string) error {
	routing := ch.Graph{}
	for intersectionID := range graph.Intersections {
		err := routing.CreateVertex(int64(intersectionID))
		if err != nil {
			return err
		}
	}
	for _, edge := range graph.Edges {
		if edge.Source == edge.Target {
			// Self-loops carry no routing information
			continue
		}
		cost := edge.LengthMeters()
		err := routing.AddEdge(int64(edge.Source), int64(edge.Target), cost)
		if err != nil {
			return err
		}
		err = routing.AddEdge(int64(edge.Target), int64(edge.Source), cost)
		if err != nil {
			return err
		}
	}

	fmt.Println("Starting contraction process....")
	st := time.Now()
	routing.PrepareContractionHierarchies()
	fmt.Printf("Done contraction process in %v\n", time.Since(st))

	fnamePart := strings.Split(out, ".csv")
	return routing.ExportShortcutsToFile(fmt.Sprintf(fnamePart[0] + "_shortcuts.csv"))
}
