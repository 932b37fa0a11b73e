package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/camera"
)

// BackgroundRenderer clears the screen and draws a world-space grid with
// the tracer bounds outlined.
type BackgroundRenderer struct {
	baseColor   rl.Color
	gridColor   rl.Color
	boundsColor rl.Color
	spacing     float64 // grid spacing in world units
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		baseColor:   rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		gridColor:   rl.Color{R: 255, G: 255, B: 255, A: 14},
		boundsColor: rl.Color{R: 255, G: 255, B: 255, A: 50},
		spacing:     50,
	}
}

// Draw renders the background for the current camera view.
func (b *BackgroundRenderer) Draw(cam *camera.Camera) {
	rl.ClearBackground(b.baseColor)

	view := cam.VisibleWorldBounds()
	for x := math.Ceil(view.Min.X/b.spacing) * b.spacing; x <= view.Max.X; x += b.spacing {
		sx, _ := cam.WorldToScreen(r2.Vec{X: x})
		rl.DrawLineV(rl.Vector2{X: sx, Y: 0}, rl.Vector2{X: sx, Y: cam.ViewportH}, b.gridColor)
	}
	for y := math.Ceil(view.Min.Y/b.spacing) * b.spacing; y <= view.Max.Y; y += b.spacing {
		_, sy := cam.WorldToScreen(r2.Vec{Y: y})
		rl.DrawLineV(rl.Vector2{X: 0, Y: sy}, rl.Vector2{X: cam.ViewportW, Y: sy}, b.gridColor)
	}

	minX, minY := cam.WorldToScreen(cam.World.Min)
	maxX, maxY := cam.WorldToScreen(cam.World.Max)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, 1, b.boundsColor)
}
