package stack

import "math"

// BaselineDrop returns how far a w×h layer rotated by theta radians must be
// lowered so that its content, not its expanded bounding box, rests on the
// ground line. The rotated box is 2·halfH tall where
// halfH = (h·|cos θ| + w·|sin θ|)/2; the drop is halfH - h/2.
func BaselineDrop(w, h int, theta float64) float64 {
	halfH := 0.5 * (float64(h)*math.Abs(math.Cos(theta)) + float64(w)*math.Abs(math.Sin(theta)))
	return halfH - float64(h)*0.5
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ShadowVector is the per-layer displacement of a shadow silhouette.
type ShadowVector struct {
	Angle float64 // degrees, counter-clockwise from +x
	Step  float64 // pixels per layer
}

// Delta returns the per-layer step in screen coordinates (y grows downward).
func (v ShadowVector) Delta() (dx, dy float64) {
	theta := Radians(v.Angle)
	return v.Step * math.Cos(theta), -v.Step * math.Sin(theta)
}

// squashedHeight is the layer height after vertical squash.
func squashedHeight(h int, squash float64) int {
	return int(float64(h) * squash)
}
