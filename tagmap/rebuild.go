package tagmap

import "sort"

// Rebuild derives a consistent set of absolute tag poses from the arc
// measurements. It is a no-op unless the graph changed since the last
// completed rebuild.
//
// The tag with the lowest ID is fixed as the map origin; its pose is left
// as whatever it already carries, conventionally the frame origin. A
// Prim-like greedy traversal then grows a spanning tree outward, always
// taking the shortest unresolved arc (shorter measurements are the more
// calibration-trustworthy ones), with ties favoring the arc nearer the
// origin in hops so that long chains accumulate less composition error.
// Each tree arc places its newly reached tag by pose composition; arcs
// whose endpoints are both already placed close a cycle and are left out
// of the tree.
//
// Every rebuild is a full reconstruction: any new measurement can change
// the greedy choice at any radius, so nothing incremental is attempted.
// Tags with no path to the origin come out with Routed false and keep
// whatever stale pose they had.
func (m *Map) Rebuild() {
	if !m.dirty {
		return
	}
	if len(m.allTags) == 0 {
		return
	}

	// Per-run visited sets; an arc is processed at most once per rebuild,
	// so the frontier strictly shrinks except for finitely many newly
	// incident arcs, and the walk terminates.
	visitedTags := make(map[TagID]bool, len(m.allTags))
	visitedArcs := make(map[arcKey]bool, len(m.allArcs))

	for _, tag := range m.allTags {
		tag.Routed = false
	}

	m.Sort()
	origin := m.allTags[0]
	origin.HopCount = 0
	origin.Routed = true
	origin.Initialized = true
	visitedTags[origin.ID] = true

	frontier := m.frontier[:0]
	frontier = append(frontier, origin.Arcs...)
	sortFrontier(frontier)

	for len(frontier) > 0 {
		// Pop the shortest arc off the tail.
		arc := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if visitedArcs[arc.key()] {
			continue
		}
		visitedArcs[arc.key()] = true

		fromNew := !visitedTags[arc.From.ID]
		toNew := !visitedTags[arc.To.ID]

		switch {
		case fromNew && toNew:
			// The frontier only ever holds arcs incident to a placed
			// tag, so this is a broken caller invariant, not data.
			panic("tagmap: frontier arc with both endpoints unreached")

		case !fromNew && !toNew:
			// Both ends already placed: this arc closes a cycle
			// relative to the tree under construction.
			arc.InTree = false

		default:
			reached, placed := arc.From, arc.To
			if fromNew {
				reached, placed = arc.To, arc.From
			}
			placed.HopCount = reached.HopCount + 1
			placed.Routed = true
			visitedTags[placed.ID] = true
			placed.setPoseThrough(reached, arc)
			arc.InTree = true

			// The new tag's arcs join the frontier; insertion
			// invalidates the sort order.
			frontier = append(frontier, placed.Arcs...)
			sortFrontier(frontier)
		}
	}

	m.frontier = frontier[:0]
	m.dirty = false
}

func sortFrontier(frontier []*Arc) {
	sort.Slice(frontier, func(i, j int) bool {
		return frontier[i].DistanceCompare(frontier[j]) < 0
	})
}
