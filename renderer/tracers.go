package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/magfield/camera"
	"github.com/pthm-cable/magfield/field"
	"github.com/pthm-cable/magfield/palette"
)

// TracerRenderer draws every tracer as a short needle coloured by its
// strength within the observed range.
type TracerRenderer struct {
	ramp   *palette.Ramp
	length float64 // needle length in world units
	buf    []field.Particle
}

// NewTracerRenderer creates a tracer renderer.
func NewTracerRenderer(ramp *palette.Ramp, length float64) *TracerRenderer {
	return &TracerRenderer{ramp: ramp, length: length}
}

// Draw renders all tracers of the engine.
func (r *TracerRenderer) Draw(e *field.Engine, cam *camera.Camera) {
	r.buf = e.AppendParticles(r.buf[:0])
	lo, hi := e.StrengthRange()

	thick := max(1, cam.WorldLength(1.5))
	tipRadius := max(1.5, cam.WorldLength(1.8))

	for i := range r.buf {
		p := &r.buf[i]
		if !cam.IsVisible(p.Position, r.length) {
			continue
		}

		c := r.ramp.Strength(p.Magnitude, lo, hi)
		color := rl.NewColor(c.R, c.G, c.B, c.A)

		tail, tip := tracerSegment(p.Position, p.Angle, r.length)
		tx, ty := cam.WorldToScreen(tail)
		hx, hy := cam.WorldToScreen(tip)
		rl.DrawLineEx(rl.Vector2{X: tx, Y: ty}, rl.Vector2{X: hx, Y: hy}, thick, color)
		// Tip marks the direction the field points
		rl.DrawCircleV(rl.Vector2{X: hx, Y: hy}, tipRadius, color)
	}
}
