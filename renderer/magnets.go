package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/camera"
	"github.com/pthm-cable/magfield/field"
)

// Pole colours follow the classroom convention.
var (
	northColor    = rl.Color{R: 220, G: 50, B: 47, A: 255}
	southColor    = rl.Color{R: 38, G: 139, B: 210, A: 255}
	selectedColor = rl.Color{R: 253, G: 246, B: 227, A: 255}
)

// MagnetRenderer draws magnets as two coloured halves with pole labels.
type MagnetRenderer struct {
	fontSize int32
}

// NewMagnetRenderer creates a magnet renderer.
func NewMagnetRenderer() *MagnetRenderer {
	return &MagnetRenderer{fontSize: 18}
}

// Draw renders every magnet; selected is outlined when hasSelected.
func (r *MagnetRenderer) Draw(magnets []field.Magnet, cam *camera.Camera, selected field.MagnetID, hasSelected bool) {
	for i := range magnets {
		m := &magnets[i]
		north, south := halfCentres(m)

		r.drawHalf(m, north, northColor, cam)
		r.drawHalf(m, south, southColor, cam)
		r.drawLabel("N", north, cam)
		r.drawLabel("S", south, cam)

		if hasSelected && field.MagnetID(i) == selected {
			r.drawOutline(m, cam)
		}
	}
}

// drawHalf draws one half of the body, centred on centre and rotated with
// the magnet.
func (r *MagnetRenderer) drawHalf(m *field.Magnet, centre r2.Vec, color rl.Color, cam *camera.Camera) {
	w := cam.WorldLength(m.HalfWidth())
	h := cam.WorldLength(2 * m.HalfHeight())
	sx, sy := cam.WorldToScreen(centre)
	rl.DrawRectanglePro(
		rl.Rectangle{X: sx, Y: sy, Width: w, Height: h},
		rl.Vector2{X: w / 2, Y: h / 2},
		degrees(m.Angle()),
		color,
	)
}

func (r *MagnetRenderer) drawLabel(text string, centre r2.Vec, cam *camera.Camera) {
	sx, sy := cam.WorldToScreen(centre)
	tw := rl.MeasureText(text, r.fontSize)
	rl.DrawText(text, int32(sx)-tw/2, int32(sy)-r.fontSize/2, r.fontSize, rl.White)
}

func (r *MagnetRenderer) drawOutline(m *field.Magnet, cam *camera.Camera) {
	corners := m.Corners()
	for i := range corners {
		ax, ay := cam.WorldToScreen(corners[i])
		bx, by := cam.WorldToScreen(corners[(i+1)%len(corners)])
		rl.DrawLineEx(rl.Vector2{X: ax, Y: ay}, rl.Vector2{X: bx, Y: by}, 2, selectedColor)
	}
}
