package osm2graph

import (
	"github.com/paulmach/orb"
)

// DirectedID records one underlying segment of a merged linestring and whether
// the merged geometry traverses it forwards.
type DirectedID[ID any] struct {
	ID      ID
	Forward bool
}

// KeyedLineString is one linear path plus the ordered list of underlying
// segments composing it and an arbitrary key. Only linestrings with equal keys
// are ever merged, so the key can scope merging to a layer or class of
// network. Merging never mutates an input in place; it always produces a new
// value.
type KeyedLineString[ID any, K comparable] struct {
	Geom orb.LineString
	IDs  []DirectedID[ID]
	Key  K
}

func (line *KeyedLineString[ID, K]) firstPt() hashedPoint[K] {
	return newHashedPoint(line.Geom[0], line.Key)
}

func (line *KeyedLineString[ID, K]) lastPt() hashedPoint[K] {
	return newHashedPoint(line.Geom[len(line.Geom)-1], line.Key)
}

// otherEndpt assumes the linestring is not a loop
func (line *KeyedLineString[ID, K]) otherEndpt(pt hashedPoint[K]) hashedPoint[K] {
	if line.firstPt() == pt {
		return line.lastPt()
	}
	return line.firstPt()
}

// hashedPoint canonicalizes a coordinate plus a key into an exactly comparable
// value at centimeter precision. The cast truncates rather than rounds, so two
// points about a centimeter apart can land in the same or different cells
// depending on sign and fractional position. Known precision artifact.
type hashedPoint[K comparable] struct {
	x, y int64
	key  K
}

func newHashedPoint[K comparable](pt orb.Point, key K) hashedPoint[K] {
	return hashedPoint[K]{x: int64(pt.X() * 100.0), y: int64(pt.Y() * 100.0), key: key}
}

// CollapseDegree2 takes a network of linestrings, finds every case of exactly
// two linestrings meeting at a point and merges them together. Only
// linestrings with a matching key are considered. The result retains the
// ordered underlying segment identifiers with their traversal direction. Two
// pieces of a loop are deliberately not collapsed; CollapseLoops handles them.
func CollapseDegree2[ID any, K comparable](inputLines []KeyedLineString[ID, K]) []KeyedLineString[ID, K] {
	// Assign each input an internal id that doesn't change
	lines := make(map[int]KeyedLineString[ID, K], len(inputLines))
	for i, line := range inputLines {
		lines[i] = line
	}
	idCounter := len(lines)

	pointToLine := indexEndpoints(lines)

	// Collect all degree 2 cases up front. Interior points of arbitrarily long
	// chains are all here already, so one pass fully reduces every chain.
	degreeTwo := []hashedPoint[K]{}
	for pt, list := range pointToLine {
		if len(list) == 2 {
			degreeTwo = append(degreeTwo, pt)
		}
	}

	for _, pt := range degreeTwo {
		pair := pointToLine[pt]
		delete(pointToLine, pt)
		idx1, idx2 := pair[0], pair[1]

		// Two pieces already closing a ring are left for CollapseLoops
		line1, line2 := lines[idx1], lines[idx2]
		if isLoop(&line1, &line2) {
			pointToLine[pt] = pair
			continue
		}

		delete(lines, idx1)
		delete(lines, idx2)
		otherEndpt1 := line1.otherEndpt(pt)
		otherEndpt2 := line2.otherEndpt(pt)

		lines[idCounter] = joinLines(line1, line2)

		// Both surviving outer endpoints now reference the merged line
		replaceIndex(pointToLine[otherEndpt1], idx1, idCounter)
		replaceIndex(pointToLine[otherEndpt2], idx2, idCounter)

		idCounter++
	}

	output := make([]KeyedLineString[ID, K], 0, len(lines))
	for _, line := range lines {
		output = append(output, line)
	}
	return output
}

// CollapseLoops is like CollapseDegree2, but only combines pairs of input that
// form a loop: two linestrings sharing both endpoints with each other.
func CollapseLoops[ID any, K comparable](inputLines []KeyedLineString[ID, K]) []KeyedLineString[ID, K] {
	lines := make(map[int]KeyedLineString[ID, K], len(inputLines))
	for i, line := range inputLines {
		lines[i] = line
	}
	idCounter := len(lines)

	pointToLine := indexEndpoints(lines)

	loopPairs := [][2]int{}
	for _, list := range pointToLine {
		if len(list) != 2 {
			continue
		}
		line1, line2 := lines[list[0]], lines[list[1]]
		if isLoop(&line1, &line2) {
			loopPairs = append(loopPairs, [2]int{list[0], list[1]})
		}
	}

	for _, pair := range loopPairs {
		idx1, idx2 := pair[0], pair[1]
		// Each pair shows up twice, once per shared endpoint; only merge the
		// first time
		line1, ok1 := lines[idx1]
		line2, ok2 := lines[idx2]
		if !ok1 || !ok2 {
			continue
		}
		delete(lines, idx1)
		delete(lines, idx2)
		lines[idCounter] = joinLines(line1, line2)
		idCounter++

		// Unlike CollapseDegree2 there is no index fix-up: once a loop closes,
		// no further work ever touches it.
	}

	output := make([]KeyedLineString[ID, K], 0, len(lines))
	for _, line := range lines {
		output = append(output, line)
	}
	return output
}

// indexEndpoints maps every endpoint to the internal ids of the linestrings
// touching it. A linestring contributes two entries, one per endpoint.
func indexEndpoints[ID any, K comparable](lines map[int]KeyedLineString[ID, K]) map[hashedPoint[K]][]int {
	pointToLine := make(map[hashedPoint[K]][]int)
	for id, line := range lines {
		pointToLine[line.firstPt()] = append(pointToLine[line.firstPt()], id)
		pointToLine[line.lastPt()] = append(pointToLine[line.lastPt()], id)
	}
	return pointToLine
}

func isLoop[ID any, K comparable](line1, line2 *KeyedLineString[ID, K]) bool {
	pt1, pt2 := line1.firstPt(), line1.lastPt()
	pt3, pt4 := line2.firstPt(), line2.lastPt()
	return (pt1 == pt3 || pt1 == pt4) && (pt2 == pt3 || pt2 == pt4)
}

// joinLines concatenates two linestrings sharing an endpoint, reversing
// whichever side must be aligned so the shared point becomes interior, and
// keeps the underlying segment lists consistent with the chosen orientation.
// Panics if the two lines share no endpoint: that means the caller's point
// index disagrees with the actual geometry, which is not recoverable.
func joinLines[ID any, K comparable](line1, line2 KeyedLineString[ID, K]) KeyedLineString[ID, K] {
	pt1, pt2 := line1.firstPt(), line1.lastPt()
	pt3, pt4 := line2.firstPt(), line2.lastPt()

	switch {
	case pt1 == pt3:
		line1.Geom.Reverse()
		line1.Geom = append(line1.Geom[:len(line1.Geom)-1], line2.Geom...)

		reverseIDs(line1.IDs)
		flipDirection(line1.IDs)
		line1.IDs = append(line1.IDs, line2.IDs...)
	case pt1 == pt4:
		line1.Geom = append(line2.Geom[:len(line2.Geom)-1], line1.Geom...)

		line1.IDs = append(line2.IDs, line1.IDs...)
	case pt2 == pt3:
		line1.Geom = append(line1.Geom[:len(line1.Geom)-1], line2.Geom...)

		line1.IDs = append(line1.IDs, line2.IDs...)
	case pt2 == pt4:
		line2.Geom.Reverse()
		line1.Geom = append(line1.Geom[:len(line1.Geom)-1], line2.Geom...)

		reverseIDs(line2.IDs)
		flipDirection(line2.IDs)
		line1.IDs = append(line1.IDs, line2.IDs...)
	default:
		panic("join lines: lines do not share an endpoint")
	}

	return line1
}

func reverseIDs[ID any](ids []DirectedID[ID]) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}

func flipDirection[ID any](ids []DirectedID[ID]) {
	for i := range ids {
		ids[i].Forward = !ids[i].Forward
	}
}

func replaceIndex(indices []int, old, new int) {
	for i := range indices {
		if indices[i] == old {
			indices[i] = new
		}
	}
}
