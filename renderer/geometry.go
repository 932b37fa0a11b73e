// Package renderer draws the scene with raylib.
package renderer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
)

// tracerSegment returns the tail and tip of a tracer needle of the given
// length centred on p and pointing along angle.
func tracerSegment(p r2.Vec, angle, length float64) (tail, tip r2.Vec) {
	sin, cos := math.Sincos(angle)
	half := r2.Vec{X: cos * length / 2, Y: sin * length / 2}
	return r2.Sub(p, half), r2.Add(p, half)
}

// halfCentres returns the world centres of a magnet's North and South
// halves.
func halfCentres(m *field.Magnet) (north, south r2.Vec) {
	n, s := m.LocalPoleOffsets()
	return m.LocalToWorld(r2.Scale(0.5, n)), m.LocalToWorld(r2.Scale(0.5, s))
}

// degrees converts radians for raylib's rotation arguments.
func degrees(rad float64) float32 {
	return float32(rad * 180 / math.Pi)
}
