package tagmap

// Arc is the single best-known relative-pose measurement between one
// unordered pair of tags. It is always stored in canonical direction:
// From.ID < To.ID. The conjugate direction is obtained by swapping the two
// twists together; distance and goodness are direction-independent.
//
// FromTwist and ToTwist are the angles, in radians, of the segment joining
// the two tag centers relative to each tag's own reference direction:
// twist = tagTwist - segmentAngle at the From end, and
// twist = tagTwist + pi - segmentAngle at the To end (the two ends face
// the segment from opposite sides).
type Arc struct {
	From      *Tag
	To        *Tag
	FromTwist float64 // radians
	ToTwist   float64 // radians
	Distance  float64 // floor units between tag centers

	// Goodness scores the retained measurement; lower is better. It is
	// the difference of the two observations' distances from the frame
	// center, so equidistant observations minimize differential lens
	// distortion. Meaningless while Measured is false.
	Goodness float64

	// Measured is false until the arc has carried a real measurement.
	// A lookup-created arc starts unmeasured; any refinement beats it.
	Measured bool

	// InTree is valid only after a completed rebuild: true when the arc
	// was selected into the spanning tree, false when it closes a cycle.
	InTree bool
}

// arcKey is the pair identity of an arc: the two tag IDs in canonical
// order. It is the arc-index key, so two arcs are duplicates exactly when
// their keys collide.
type arcKey struct {
	Lo, Hi TagID
}

// pairKey returns the canonical index key for two tag IDs, in either order.
func pairKey(a, b TagID) arcKey {
	if a > b {
		a, b = b, a
	}
	return arcKey{Lo: a, Hi: b}
}

// key returns the arc's own index key.
func (a *Arc) key() arcKey {
	return arcKey{Lo: a.From.ID, Hi: a.To.ID}
}

// NewArc creates an arc between two tags and registers it on both tags'
// incident sets. Order is canonicalized: when from has the higher ID, the
// tags and their twists are swapped together. NewArc performs no duplicate
// check; deduplication is Map.ArcLookup's job.
func NewArc(from *Tag, fromTwist, distance float64, to *Tag, toTwist, goodness float64) *Arc {
	if from.ID > to.ID {
		from, to = to, from
		fromTwist, toTwist = toTwist, fromTwist
	}

	arc := &Arc{
		From:      from,
		To:        to,
		FromTwist: fromTwist,
		ToTwist:   toTwist,
		Distance:  distance,
		Goodness:  goodness,
		Measured:  true,
	}
	from.appendArc(arc)
	to.appendArc(arc)
	return arc
}

// newUnmeasuredArc creates the placeholder arc ArcLookup inserts for a pair
// that has no real measurement yet.
func newUnmeasuredArc(from, to *Tag) *Arc {
	arc := NewArc(from, 0, 0, to, 0, 0)
	arc.Measured = false
	return arc
}

// Compare returns the total order of a vs b: by From.ID, then To.ID. It
// drives both index equality and deterministic output ordering.
func (a *Arc) Compare(b *Arc) int {
	if c := a.From.Compare(b.From); c != 0 {
		return c
	}
	return a.To.Compare(b.To)
}

// DistanceCompare orders arcs by distance descending (longest first), ties
// broken by the smaller of the two endpoints' current hop counts,
// descending. A frontier kept sorted by this order always has the
// shortest, most-trustworthy arc at its tail, ready to pop.
func (a *Arc) DistanceCompare(b *Arc) int {
	switch {
	case a.Distance > b.Distance:
		return -1
	case a.Distance < b.Distance:
		return 1
	}
	ah := minHopCount(a)
	bh := minHopCount(b)
	switch {
	case ah > bh:
		return -1
	case ah < bh:
		return 1
	}
	return 0
}

func minHopCount(a *Arc) int {
	if a.From.HopCount < a.To.HopCount {
		return a.From.HopCount
	}
	return a.To.HopCount
}

// Update replaces the arc's measurement in place. The arc must already be
// in canonical direction; callers canonicalize before calling.
func (a *Arc) Update(fromTwist, distance, toTwist, goodness float64) {
	if a.From.ID >= a.To.ID {
		panic("tagmap: Update on non-canonical arc")
	}
	a.FromTwist = fromTwist
	a.Distance = distance
	a.ToTwist = toTwist
	a.Goodness = goodness
	a.Measured = true
}
