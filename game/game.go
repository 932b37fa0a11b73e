package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/magfield/camera"
	"github.com/pthm-cable/magfield/input"
	"github.com/pthm-cable/magfield/palette"
	"github.com/pthm-cable/magfield/renderer"
	"github.com/pthm-cable/magfield/ui"
)

const controlsHint = "Drag: move | Wheel/Q/E: rotate | RMB/F: flip | Tab: select | +/-: count | L: lines | R: reset | Space: pause | P: snapshot | F3: perf"

// Game is a session with a raylib window on top.
type Game struct {
	*Session

	camera     *camera.Camera
	controller *input.Controller
	ramp       *palette.Ramp

	background *renderer.BackgroundRenderer
	tracers    *renderer.TracerRenderer
	magnets    *renderer.MagnetRenderer
	fieldLines *renderer.FieldLineRenderer

	hud       *ui.HUD
	controls  *ui.ControlsPanel
	perfPanel *ui.PerfPanel
	showPerf  bool

	// Widget actions produced while drawing, applied next Update
	pending []input.Action

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game. In headless mode no raylib state is
// touched and only UpdateHeadless may be called.
func NewGameWithOptions(opts Options) *Game {
	g := &Game{Session: NewSession(opts)}
	if opts.Headless {
		return g
	}

	cfg := g.cfg
	g.screenWidth = cfg.Derived.ScreenW32
	g.screenHeight = cfg.Derived.ScreenH32

	g.camera = camera.New(g.screenWidth, g.screenHeight, g.engine.Params().Bounds)
	g.controller = input.NewController(g.camera, cfg)

	ramp, err := palette.FromConfig(cfg)
	if err != nil {
		slog.Error("invalid palette, using defaults", "error", err)
		ramp, _ = palette.NewRamp("#1e3a8a", "#f97316")
	}
	g.ramp = ramp

	g.background = renderer.NewBackgroundRenderer(12, 14, 20)
	g.tracers = renderer.NewTracerRenderer(ramp, 12)
	g.magnets = renderer.NewMagnetRenderer()
	g.fieldLines = renderer.NewFieldLineRenderer()

	g.hud = ui.NewHUD()
	g.controls = ui.NewControlsPanel(0, 0, 300, cfg.Particles.Max)
	g.perfPanel = ui.NewPerfPanel(0, 0)
	g.layout()

	return g
}

// Update reads input, applies it and advances one frame.
func (g *Game) Update() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}

	blocked := g.controls.Contains(rl.GetMousePosition())
	actions := append(g.pending, g.controller.Poll(g.engine, blocked)...)
	g.pending = g.pending[:0]
	g.ApplyAll(actions)

	g.Step()
}

// UpdateHeadless advances one frame without reading input.
func (g *Game) UpdateHeadless() {
	g.Step()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.layout()
}

// layout places the panels for the current window size.
func (g *Game) layout() {
	h := int32(g.screenHeight)
	w := int32(g.screenWidth)
	g.controls.SetPosition(10, h-g.controls.Height()-35)
	g.perfPanel.SetPosition(w-250, 10)
}

// Draw renders the scene and UI.
func (g *Game) Draw() {
	g.profiler.MarkDraw()

	rl.BeginDrawing()

	g.background.Draw(g.camera)

	if g.linesVisible {
		lines, nulls := g.FieldLines()
		g.fieldLines.Draw(lines, g.camera)
		g.fieldLines.DrawNulls(nulls, g.camera)
	}

	g.tracers.Draw(g.engine, g.camera)

	selected, hasSelected := g.controller.Selected()
	g.magnets.Draw(g.engine.Magnets(), g.camera, selected, hasSelected)

	g.drawUI()

	rl.EndDrawing()
}

// drawUI renders the HUD, legend and controls.
func (g *Game) drawUI() {
	w, h := int32(g.screenWidth), int32(g.screenHeight)
	lo, hi := g.engine.StrengthRange()

	data := ui.HUDData{
		Title:        "Magnetic Field",
		Particles:    g.engine.ParticleCount(),
		MaxParticles: g.cfg.Particles.Max,
		Magnets:      g.engine.MagnetCount(),
		Frame:        g.engine.Frame(),
		FPS:          rl.GetFPS(),
		MinStrength:  lo,
		MaxStrength:  hi,
		ZeroField:    g.engine.ZeroFieldCount(),
		Paused:       g.paused,
		LinesVisible: g.linesVisible,
	}
	if g.linesVisible {
		_, nulls := g.FieldLines()
		data.Nulls = len(nulls)
	}
	if id, ok := g.controller.Selected(); ok {
		if m, ok := g.engine.Magnet(id); ok {
			data.Selected = fmt.Sprintf("#%d %s", id, m.Polarity())
		}
	}
	g.hud.Draw(data)
	g.hud.DrawLegend(g.ramp, lo, hi, w, h)

	g.pending = append(g.pending, g.controls.Draw(g.engine.ParticleCount(), g.linesVisible, g.paused)...)

	if g.showPerf {
		g.perfPanel.Draw(g.Profile())
	}

	g.hud.DrawControls(w, h, controlsHint)
}

// Unload releases resources.
func (g *Game) Unload() {
	g.Close()
}
