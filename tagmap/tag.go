package tagmap

import (
	"math"

	"github.com/paulmach/orb"
)

// NewTag creates an uninitialized tag with the given ID and
// distance-per-pixel calibration.
func NewTag(id TagID, distancePerPixel float64) *Tag {
	return &Tag{
		ID:               id,
		DistancePerPixel: distancePerPixel,
	}
}

// Compare returns the total order of t vs o, by ID.
func (t *Tag) Compare(o *Tag) int {
	switch {
	case t.ID < o.ID:
		return -1
	case t.ID > o.ID:
		return 1
	}
	return 0
}

// appendArc registers an incident arc. The incident set is append-only.
func (t *Tag) appendArc(a *Arc) {
	t.Arcs = append(t.Arcs, a)
}

// Point returns the tag center as an orb.Point.
func (t *Tag) Point() orb.Point {
	return orb.Point{t.X, t.Y}
}

// twistsFor returns the arc twists as seen from the known endpoint: first
// the twist at the known end, then the twist at the far end. It panics
// when known is not an endpoint of a.
func twistsFor(known *Tag, a *Arc) (knownTwist, farTwist float64) {
	switch known {
	case a.From:
		return a.FromTwist, a.ToTwist
	case a.To:
		return a.ToTwist, a.FromTwist
	}
	panic("tagmap: tag is not an endpoint of arc")
}

// setPoseThrough computes and stores t's absolute pose by composing the
// already-placed endpoint's pose with the arc's measurement.
//
// At either end the stored twist satisfies
//
//	twist = tagTwist - segmentAngle
//
// where segmentAngle points away from that end, so the floor-frame segment
// direction from the known tag toward t is known.Twist - knownTwist, and
// t's own twist follows from the far-end relation with the segment
// reversed (+pi).
func (t *Tag) setPoseThrough(known *Tag, a *Arc) {
	knownTwist, farTwist := twistsFor(known, a)
	seg := normalizeAngle(known.Twist - knownTwist)
	t.X = known.X + a.Distance*math.Cos(seg)
	t.Y = known.Y + a.Distance*math.Sin(seg)
	t.Twist = normalizeAngle(farTwist + seg + math.Pi)
	t.Initialized = true
}

// boundUpdate grows b to include the tag center.
func (t *Tag) boundUpdate(b orb.Bound) orb.Bound {
	return b.Extend(t.Point())
}

// SetPose overwrites the tag's absolute pose directly. It is used when a
// pose arrives from a persisted map rather than from pose propagation.
func (t *Tag) SetPose(x, y, twist float64) {
	t.X = x
	t.Y = y
	t.Twist = normalizeAngle(twist)
	t.Initialized = true
}
