package osm2graph

import (
	"github.com/paulmach/osm"
)

type importSettings struct {
	verbose  bool
	keepEdge func(osm.Tags) bool
	observer FeedObserver
}

func defaultImportSettings() *importSettings {
	return &importSettings{
		verbose:  false,
		keepEdge: KeepHighways(),
		observer: NullObserver{},
	}
}

// ImportOption customizes one import call
type ImportOption func(*importSettings)

// WithVerbose enables progress output during import
func WithVerbose(verbose bool) ImportOption {
	return func(settings *importSettings) {
		settings.verbose = verbose
	}
}

// WithKeepEdge sets the predicate deciding which ways become graph edges
func WithKeepEdge(keepEdge func(osm.Tags) bool) ImportOption {
	return func(settings *importSettings) {
		settings.keepEdge = keepEdge
	}
}

// WithObserver registers a sink for every decoded node and way
func WithObserver(observer FeedObserver) ImportOption {
	return func(settings *importSettings) {
		settings.observer = observer
	}
}

// KeepHighways keeps every way carrying a highway tag. With explicit values
// given, only those highway classes pass.
func KeepHighways(values ...string) func(osm.Tags) bool {
	if len(values) == 0 {
		return func(tags osm.Tags) bool {
			return tags.Find("highway") != ""
		}
	}
	allowed := make(map[string]struct{}, len(values))
	for _, value := range values {
		allowed[value] = struct{}{}
	}
	return func(tags osm.Tags) bool {
		_, ok := allowed[tags.Find("highway")]
		return ok
	}
}
