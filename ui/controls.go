package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/magfield/input"
)

// unboundedSpan is the slider range used when the configured maximum is
// zero, meaning the count itself is unbounded.
const unboundedSpan = 5000

// ControlsPanel holds the particle count slider and scene buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	maxCount int
}

// NewControlsPanel creates a controls panel whose slider spans
// [0, maxCount]. A maxCount of zero or less leaves the count unbounded.
func NewControlsPanel(x, y, width int32, maxCount int) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		maxCount: maxCount,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Bounds returns the screen rectangle the panel occupies.
func (c *ControlsPanel) Bounds() rl.Rectangle {
	return rl.Rectangle{
		X:      float32(c.x),
		Y:      float32(c.y),
		Width:  float32(c.width),
		Height: float32(c.Height()),
	}
}

// Contains reports whether a screen point lies over the panel, in which
// case scene mouse input should be ignored.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, c.Bounds())
}

// Height returns the panel height in pixels.
func (c *ControlsPanel) Height() int32 {
	t := c.renderer.Theme
	return 2*t.Padding + t.LineHeight + 20 + 8 + 26
}

// Draw renders the panel and returns the actions its widgets produced this
// frame.
func (c *ControlsPanel) Draw(count int, linesVisible, paused bool) []input.Action {
	r := c.renderer
	pad := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.Height())

	x := float32(c.x + pad)
	y := float32(c.y + pad)
	inner := float32(c.width - 2*pad)

	rl.DrawText(fmt.Sprintf("Particles: %d", count), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += float32(r.Theme.LineHeight)

	var actions []input.Action

	span := sliderSpan(count, c.maxCount)
	value := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: y, Width: inner - 60, Height: 20},
		"0", fmt.Sprintf("%d", span),
		float32(count), 0, float32(span),
	)
	if n := sliderCount(value, c.maxCount); n != count {
		actions = append(actions, input.Action{Kind: input.ActionSetCount, Count: n})
	}
	y += 28

	bw := (inner - 2*8) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 26}, toggleText(linesVisible, "Hide lines", "Show lines")) {
		actions = append(actions, input.Action{Kind: input.ActionToggleLines})
	}
	if gui.Button(rl.Rectangle{X: x + bw + 8, Y: y, Width: bw, Height: 26}, toggleText(paused, "Resume", "Pause")) {
		actions = append(actions, input.Action{Kind: input.ActionTogglePause})
	}
	if gui.Button(rl.Rectangle{X: x + 2*(bw+8), Y: y, Width: bw, Height: 26}, "Reset") {
		actions = append(actions, input.Action{Kind: input.ActionReset})
	}

	return actions
}

// sliderSpan is the slider's upper end. Without a configured maximum it
// grows to fit the current count.
func sliderSpan(count, maxCount int) int {
	if maxCount > 0 {
		return maxCount
	}
	return max(count, unboundedSpan)
}

// sliderCount turns a raw slider value into a particle count in
// [0, maxCount], with no upper clamp when maxCount is zero or less.
func sliderCount(value float32, maxCount int) int {
	n := max(int(math.Round(float64(value))), 0)
	if maxCount > 0 {
		n = min(n, maxCount)
	}
	return n
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
