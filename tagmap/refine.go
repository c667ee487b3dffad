package tagmap

import "math"

// RefineArc offers one same-frame pair of observations as a candidate
// measurement for the arc joining the two observed tags. The candidate's
// goodness is the difference of the two observations' polar distances from
// the frame center: observations equidistant from the center suffer the
// least differential lens and perspective distortion, so lower is better.
//
// The arc is overwritten only when the candidate strictly improves on the
// stored goodness (an unmeasured arc is always improved on); otherwise the
// call is a no-op. Returns true when the arc was updated.
func (m *Map) RefineArc(obsA, obsB Observation, width, height int) bool {
	fromTag := m.TagLookup(obsA.TagID)
	toTag := m.TagLookup(obsB.TagID)
	arc := m.ArcLookup(fromTag, toTag)

	cx := float64(width) / 2
	cy := float64(height) / 2

	fromPolarDist, fromPolarAngle := polarOffset(obsA.X, obsA.Y, cx, cy)
	toPolarDist, toPolarAngle := polarOffset(obsB.X, obsB.Y, cx, cy)

	goodness := math.Abs(fromPolarDist - toPolarDist)
	if arc.Measured && goodness >= arc.Goodness {
		return false
	}

	// The two tags may hang at different ceiling heights, so each center
	// is projected onto the floor with its own scale factor.
	fromFloorX := fromTag.DistancePerPixel * fromPolarDist * math.Cos(fromPolarAngle)
	fromFloorY := fromTag.DistancePerPixel * fromPolarDist * math.Sin(fromPolarAngle)
	toFloorX := toTag.DistancePerPixel * toPolarDist * math.Cos(toPolarAngle)
	toFloorY := toTag.DistancePerPixel * toPolarDist * math.Sin(toPolarAngle)

	floorDistance := math.Hypot(fromFloorX-toFloorX, fromFloorY-toFloorY)

	// Direction of the segment joining the two tag centers, in the camera
	// frame. The To end faces the segment from the opposite side, hence
	// the pi offset.
	segAngle := math.Atan2(obsB.Y-obsA.Y, obsB.X-obsA.X)
	fromTwist := normalizeAngle(obsA.Twist - segAngle)
	toTwist := normalizeAngle(obsB.Twist + math.Pi - segAngle)

	// ArcLookup canonicalized the pair, but the observations may have
	// arrived in the conjugate order.
	if fromTag.ID > toTag.ID {
		fromTwist, toTwist = toTwist, fromTwist
	}

	arc.Update(fromTwist, floorDistance, toTwist, goodness)

	if obsA.Diagonal > 0 {
		fromTag.Diagonal = obsA.Diagonal
	}
	if obsB.Diagonal > 0 {
		toTag.Diagonal = obsB.Diagonal
	}

	m.dirty = true
	return true
}

// RefineFrame registers every observed tag, offers every unordered pair of
// observations as an arc candidate, and returns the number of arcs updated.
// A frame with fewer than two observations carries no relative measurement
// but still registers what it saw.
func (m *Map) RefineFrame(frame Frame) int {
	updated := 0
	obs := frame.Observations
	for _, o := range obs {
		m.TagLookup(o.TagID)
	}
	for i := 0; i < len(obs); i++ {
		for j := i + 1; j < len(obs); j++ {
			if obs[i].TagID == obs[j].TagID {
				continue
			}
			if m.RefineArc(obs[i], obs[j], frame.Width, frame.Height) {
				updated++
			}
		}
	}
	return updated
}
