package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/camera"
)

// FieldLineRenderer draws traced field lines and null points.
type FieldLineRenderer struct {
	lineColor rl.Color
	nullColor rl.Color
}

// NewFieldLineRenderer creates a field-line renderer.
func NewFieldLineRenderer() *FieldLineRenderer {
	return &FieldLineRenderer{
		lineColor: rl.Color{R: 200, G: 200, B: 200, A: 90},
		nullColor: rl.Color{R: 255, G: 230, B: 0, A: 220},
	}
}

// Draw renders each polyline.
func (r *FieldLineRenderer) Draw(lines [][]r2.Vec, cam *camera.Camera) {
	for _, line := range lines {
		for i := 1; i < len(line); i++ {
			ax, ay := cam.WorldToScreen(line[i-1])
			bx, by := cam.WorldToScreen(line[i])
			rl.DrawLineV(rl.Vector2{X: ax, Y: ay}, rl.Vector2{X: bx, Y: by}, r.lineColor)
		}
	}
}

// DrawNulls marks null points with a ring.
func (r *FieldLineRenderer) DrawNulls(nulls []r2.Vec, cam *camera.Camera) {
	for _, p := range nulls {
		sx, sy := cam.WorldToScreen(p)
		rl.DrawCircleLines(int32(sx), int32(sy), 6, r.nullColor)
	}
}
