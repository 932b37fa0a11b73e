package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polarity selects which physical end of a magnet is North.
type Polarity uint8

const (
	PolarityNormal  Polarity = iota // North on the local +X end
	PolarityFlipped                 // North on the local -X end
)

// String returns a short label for logs and snapshots.
func (p Polarity) String() string {
	if p == PolarityFlipped {
		return "flipped"
	}
	return "normal"
}

// MagnetID indexes a magnet in the engine's magnet sequence.
type MagnetID int

// Magnet is a bar magnet modelled as two point poles at its short ends.
// Fields are unexported so the pole cache can only change through
// methods that recompute it.
type Magnet struct {
	position   r2.Vec
	angle      float64
	halfWidth  float64
	halfHeight float64
	strength   float64
	polarity   Polarity

	north, south r2.Vec
}

// NewMagnet creates a magnet with its poles already resolved.
func NewMagnet(position r2.Vec, angle, halfWidth, halfHeight, strength float64, polarity Polarity) Magnet {
	m := Magnet{
		position:   position,
		angle:      angle,
		halfWidth:  halfWidth,
		halfHeight: halfHeight,
		strength:   strength,
		polarity:   polarity,
	}
	m.updatePoles()
	return m
}

// Accessors. Poles are always consistent with the current pose.

func (m *Magnet) Position() r2.Vec { return m.position }
func (m *Magnet) Angle() float64 { return m.angle }
func (m *Magnet) HalfWidth() float64 { return m.halfWidth }
func (m *Magnet) HalfHeight() float64 { return m.halfHeight }
func (m *Magnet) Strength() float64 { return m.strength }
func (m *Magnet) Polarity() Polarity { return m.polarity }
func (m *Magnet) North() r2.Vec { return m.north }
func (m *Magnet) South() r2.Vec { return m.south }

// LocalPoleOffsets returns the North and South offsets from the magnet
// centre in the magnet's unrotated frame.
func (m *Magnet) LocalPoleOffsets() (north, south r2.Vec) {
	right := r2.Vec{X: m.halfWidth}
	left := r2.Vec{X: -m.halfWidth}
	if m.polarity == PolarityFlipped {
		return left, right
	}
	return right, left
}

// LocalToWorld maps an offset in the magnet's frame to world space.
func (m *Magnet) LocalToWorld(offset r2.Vec) r2.Vec {
	return rotateAbout(m.position, m.angle, offset)
}

// WorldToLocal maps a world point into the magnet's unrotated frame.
func (m *Magnet) WorldToLocal(p r2.Vec) r2.Vec {
	d := r2.Sub(p, m.position)
	sin, cos := math.Sincos(-m.angle)
	return r2.Vec{
		X: d.X*cos - d.Y*sin,
		Y: d.X*sin + d.Y*cos,
	}
}

// Contains reports whether p lies inside the magnet's body.
func (m *Magnet) Contains(p r2.Vec) bool {
	l := m.WorldToLocal(p)
	return math.Abs(l.X) <= m.halfWidth && math.Abs(l.Y) <= m.halfHeight
}

// Corners returns the body outline in world space, counter-clockwise
// starting from the local (-w, -h) corner.
func (m *Magnet) Corners() [4]r2.Vec {
	w, h := m.halfWidth, m.halfHeight
	return [4]r2.Vec{
		m.LocalToWorld(r2.Vec{X: -w, Y: -h}),
		m.LocalToWorld(r2.Vec{X: w, Y: -h}),
		m.LocalToWorld(r2.Vec{X: w, Y: h}),
		m.LocalToWorld(r2.Vec{X: -w, Y: h}),
	}
}

func (m *Magnet) setPose(position r2.Vec, angle float64) {
	m.position = position
	m.angle = angle
	m.updatePoles()
}

func (m *Magnet) flip() {
	if m.polarity == PolarityFlipped {
		m.polarity = PolarityNormal
	} else {
		m.polarity = PolarityFlipped
	}
	m.updatePoles()
}

// updatePoles must run after every change to position, angle or polarity.
func (m *Magnet) updatePoles() {
	n, s := m.LocalPoleOffsets()
	m.north = m.LocalToWorld(n)
	m.south = m.LocalToWorld(s)
}

// rotateAbout returns center + R(theta)*offset.
func rotateAbout(center r2.Vec, theta float64, offset r2.Vec) r2.Vec {
	sin, cos := math.Sincos(theta)
	return r2.Vec{
		X: center.X + offset.X*cos - offset.Y*sin,
		Y: center.Y + offset.X*sin + offset.Y*cos,
	}
}
