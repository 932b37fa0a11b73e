package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/magfield/palette"
	"github.com/pthm-cable/magfield/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Particles    int
	MaxParticles int
	Magnets      int
	Frame        int64
	FPS          int32
	MinStrength  float64
	MaxStrength  float64
	ZeroField    int
	Nulls        int
	Selected     string // empty when nothing is selected
	Paused       bool
	LinesVisible bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    230,
	}
}

// Draw renders the HUD panel in the top-left corner and returns its bottom
// edge.
func (h *HUD) Draw(data HUDData) int32 {
	r := h.renderer
	pad := r.Theme.Padding
	x, y := pad, pad

	lines := 7
	if data.LinesVisible {
		lines++
	}
	if data.Paused {
		lines++
	}
	height := int32(lines)*r.Theme.LineHeight + r.Theme.HeaderFontSize + 3*pad
	r.DrawPanel(x, y, h.width, height)

	x += pad
	y += pad
	y = r.DrawSectionHeader(x, y, data.Title)
	y = r.DrawLabelValue(x, y, "Particles", particlesLabel(data.Particles, data.MaxParticles))
	y = r.DrawLabelValue(x, y, "Magnets", fmt.Sprintf("%d", data.Magnets))
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d (%d fps)", data.Frame, data.FPS))
	y = r.DrawLabelValue(x, y, "Min |B|", strengthLabel(data.MinStrength))
	y = r.DrawLabelValue(x, y, "Max |B|", strengthLabel(data.MaxStrength))
	y = r.DrawLabelValue(x, y, "Zero field", fmt.Sprintf("%d", data.ZeroField))
	y = r.DrawLabelValue(x, y, "Selected", selectedLabel(data.Selected))
	if data.LinesVisible {
		y = r.DrawLabelValue(x, y, "Nulls", fmt.Sprintf("%d", data.Nulls))
	}
	if data.Paused {
		y = r.DrawStatus(x, y, "PAUSED")
	}
	return y + pad
}

// DrawLegend renders the strength colour ramp with its current range at
// the bottom-right corner of the screen.
func (h *HUD) DrawLegend(ramp *palette.Ramp, lo, hi float64, screenW, screenH int32) {
	r := h.renderer
	const w, barH = 200, 12
	x := screenW - w - r.Theme.Padding
	y := screenH - barH - r.Theme.LineHeight - r.Theme.Padding - 20

	r.DrawGradient(x, y, w, barH, ramp.At)

	loText, hiText := strengthLabel(lo), strengthLabel(hi)
	rl.DrawText(loText, x, y+barH+3, r.Theme.FontSize-2, r.Theme.LabelColor)
	hw := rl.MeasureText(hiText, r.Theme.FontSize-2)
	rl.DrawText(hiText, x+w-hw, y+barH+3, r.Theme.FontSize-2, r.Theme.LabelColor)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the frame phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(prof telemetry.FrameProfile) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", prof.AvgFrame.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, ph := range prof.ByCost() {
		color := rl.LightGray
		if ph.Pct > 50 {
			color = rl.Red
		} else if ph.Pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", ph.Name, ph.Avg.Round(time.Microsecond), ph.Pct),
			x, y, 12, color,
		)
		y += 14
	}

	y += 4
	rl.DrawText(throughputLabel(prof.PairsPerSec), x, y, 12, rl.LightGray)
	y += 14
	rl.DrawText(fmt.Sprintf("lines: %d rebuilt, %d cached", prof.LineRebuilds, prof.LineHits), x, y, 12, rl.LightGray)
}

// throughputLabel formats tracer-magnet evaluations per second.
func throughputLabel(pairsPerSec float64) string {
	switch {
	case pairsPerSec >= 1e6:
		return fmt.Sprintf("field: %.1fM pairs/s", pairsPerSec/1e6)
	case pairsPerSec >= 1e3:
		return fmt.Sprintf("field: %.1fk pairs/s", pairsPerSec/1e3)
	default:
		return fmt.Sprintf("field: %.0f pairs/s", pairsPerSec)
	}
}

func particlesLabel(n, maxCount int) string {
	if maxCount <= 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d / %d", n, maxCount)
}

// strengthLabel formats a field magnitude compactly.
func strengthLabel(v float64) string {
	switch {
	case v == 0:
		return "0"
	case v >= 1000 || v < 0.01:
		return fmt.Sprintf("%.2e", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

func selectedLabel(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
