package tagmap

import "sort"

// Map owns the full tag/arc graph: the tag set indexed by ID, the arc set
// indexed by canonical tag pair, the dirty flag driving rebuilds, and the
// height table consulted when tags are created.
//
// Map is not safe for concurrent use; callers that feed it from multiple
// goroutines must serialize access (the service wraps it in one mutex).
type Map struct {
	tags    map[TagID]*Tag
	allTags []*Tag

	arcs    map[arcKey]*Arc
	allArcs []*Arc

	heights HeightTable

	// dirty is set on any tag or arc mutation and cleared when a rebuild
	// completes.
	dirty bool

	// frontier is the reusable traversal worklist for Rebuild.
	frontier []*Arc
}

// NewMap creates an empty map. The height table supplies distance-per-pixel
// calibration for lazily created tags; a nil table yields zero calibration,
// which is fine for maps that are only loaded, never refined.
func NewMap(heights HeightTable) *Map {
	return &Map{
		tags:    make(map[TagID]*Tag),
		arcs:    make(map[arcKey]*Arc),
		heights: heights,
	}
}

// TagLookup returns the tag with the given ID, creating it on first
// reference. Tags persist for the map's lifetime; nothing is ever removed.
func (m *Map) TagLookup(id TagID) *Tag {
	if tag, ok := m.tags[id]; ok {
		return tag
	}
	tag := NewTag(id, m.heights.DistancePerPixel(id))
	m.tags[id] = tag
	m.allTags = append(m.allTags, tag)
	m.dirty = true
	return tag
}

// ArcLookup returns the arc joining the two tags, creating an unmeasured
// placeholder on first reference. The pair may be given in either order.
func (m *Map) ArcLookup(a, b *Tag) *Arc {
	key := pairKey(a.ID, b.ID)
	if arc, ok := m.arcs[key]; ok {
		return arc
	}
	arc := newUnmeasuredArc(a, b)
	m.arcs[key] = arc
	m.allArcs = append(m.allArcs, arc)
	m.dirty = true
	return arc
}

// registerArc indexes an externally created arc (codec load path). It
// panics when the pair is already present; one arc exists per pair.
func (m *Map) registerArc(arc *Arc) {
	key := arc.key()
	if _, ok := m.arcs[key]; ok {
		panic("tagmap: duplicate arc for tag pair")
	}
	m.arcs[key] = arc
	m.allArcs = append(m.allArcs, arc)
	m.dirty = true
}

// Dirty reports whether the graph changed since the last completed rebuild.
func (m *Map) Dirty() bool {
	return m.dirty
}

// TagCount returns the number of tags in the map.
func (m *Map) TagCount() int {
	return len(m.allTags)
}

// ArcCount returns the number of arcs in the map.
func (m *Map) ArcCount() int {
	return len(m.allArcs)
}

// Tags returns all tags sorted by ID.
func (m *Map) Tags() []*Tag {
	m.Sort()
	return m.allTags
}

// Arcs returns all arcs in canonical order.
func (m *Map) Arcs() []*Arc {
	m.Sort()
	return m.allArcs
}

// Sort orders both collections into their canonical, deterministic order:
// tags by ID, arcs by (From.ID, To.ID).
func (m *Map) Sort() {
	sort.Slice(m.allTags, func(i, j int) bool {
		return m.allTags[i].Compare(m.allTags[j]) < 0
	})
	sort.Slice(m.allArcs, func(i, j int) bool {
		return m.allArcs[i].Compare(m.allArcs[j]) < 0
	})
}

// Compare returns the structural order of m vs o: tag counts, then tag
// identities in order, then arc counts, then arc identities in order.
// Realistically it is only used to test equality.
func (m *Map) Compare(o *Map) int {
	m.Sort()
	o.Sort()

	if c := compareInt(len(m.allTags), len(o.allTags)); c != 0 {
		return c
	}
	for i, tag := range m.allTags {
		if c := tag.Compare(o.allTags[i]); c != 0 {
			return c
		}
	}
	if c := compareInt(len(m.allArcs), len(o.allArcs)); c != 0 {
		return c
	}
	for i, arc := range m.allArcs {
		if c := arc.Compare(o.allArcs[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Equal reports whether the two maps are structurally equal.
func (m *Map) Equal(o *Map) bool {
	return m.Compare(o) == 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
