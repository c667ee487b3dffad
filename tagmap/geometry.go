package tagmap

import "math"

// normalizeAngle reduces an angle in radians to the principal range
// (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// polarOffset returns the polar coordinates (distance, angle) of pixel
// point (x, y) relative to the frame center (cx, cy).
func polarOffset(x, y, cx, cy float64) (distance, angle float64) {
	dx := x - cx
	dy := y - cy
	return math.Hypot(dx, dy), math.Atan2(dy, dx)
}

// degrees converts radians to degrees.
func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// radians converts degrees to radians.
func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
