// Package tui renders the tracer scene in a terminal with tcell.
package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
	"github.com/pthm-cable/magfield/input"
	"github.com/pthm-cable/magfield/palette"
)

// Driver is what the terminal frontend needs from a session.
type Driver interface {
	Engine() *field.Engine
	Apply(a input.Action)
	Step()
	Paused() bool
	Quit() bool
}

// arrows are indexed by heading octant, clockwise from +X. World Y grows
// down like terminal rows, so octant 2 points down the screen.
var arrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

var (
	northStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(220, 50, 47))
	southStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(38, 139, 210))
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// App is a running terminal session.
type App struct {
	screen tcell.Screen
	driver Driver
	ramp   *palette.Ramp

	width, height int
	frameInterval time.Duration

	rotateStep float64
	countStep  int
	moveStep   float64 // world units per arrow press

	selected field.MagnetID
}

// New creates an app drawing on screen. The screen must already be
// initialised.
func New(screen tcell.Screen, driver Driver, ramp *palette.Ramp, fps int, rotateStep float64, countStep int) *App {
	if fps < 1 {
		fps = 30
	}
	a := &App{
		screen:        screen,
		driver:        driver,
		ramp:          ramp,
		frameInterval: time.Second / time.Duration(fps),
		rotateStep:    rotateStep,
		countStep:     countStep,
		moveStep:      10,
	}
	a.width, a.height = screen.Size()
	return a
}

// Run polls events and steps the session until quit. It returns when the
// user quits; the caller finalises the screen.
func (a *App) Run() {
	ticker := time.NewTicker(a.frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				// Screen finalised
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.handleEvent(ev)
			if a.driver.Quit() {
				return
			}

		case <-ticker.C:
			a.driver.Step()
			a.Draw()
		}
	}
}

// handleEvent turns a terminal event into session actions.
func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		for _, act := range a.keyActions(ev) {
			a.driver.Apply(act)
		}
	case *tcell.EventResize:
		a.width, a.height = a.screen.Size()
		a.screen.Sync()
	}
}

// keyActions maps one key press to actions. Tab changes the selection
// directly since it does not touch the scene.
func (a *App) keyActions(ev *tcell.EventKey) []input.Action {
	e := a.driver.Engine()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return []input.Action{{Kind: input.ActionQuit}}
	case tcell.KeyTab:
		if n := e.MagnetCount(); n > 0 {
			a.selected = (a.selected + 1) % field.MagnetID(n)
		}
		return nil
	case tcell.KeyLeft:
		return a.moveSelected(r2.Vec{X: -a.moveStep})
	case tcell.KeyRight:
		return a.moveSelected(r2.Vec{X: a.moveStep})
	case tcell.KeyUp:
		return a.moveSelected(r2.Vec{Y: -a.moveStep})
	case tcell.KeyDown:
		return a.moveSelected(r2.Vec{Y: a.moveStep})
	case tcell.KeyRune:
	default:
		return nil
	}

	switch ev.Rune() {
	case 'q':
		return []input.Action{{Kind: input.ActionRotate, Magnet: a.selected, Delta: -a.rotateStep}}
	case 'e':
		return []input.Action{{Kind: input.ActionRotate, Magnet: a.selected, Delta: a.rotateStep}}
	case 'f':
		return []input.Action{{Kind: input.ActionFlip, Magnet: a.selected}}
	case '+', '=':
		return []input.Action{{Kind: input.ActionAdjustCount, Count: a.countStep}}
	case '-':
		return []input.Action{{Kind: input.ActionAdjustCount, Count: -a.countStep}}
	case 'r':
		return []input.Action{{Kind: input.ActionReset}}
	case ' ':
		return []input.Action{{Kind: input.ActionTogglePause}}
	case 'p':
		return []input.Action{{Kind: input.ActionSnapshot}}
	case 'x':
		return []input.Action{{Kind: input.ActionQuit}}
	}
	return nil
}

func (a *App) moveSelected(d r2.Vec) []input.Action {
	m, ok := a.driver.Engine().Magnet(a.selected)
	if !ok {
		return nil
	}
	return []input.Action{{Kind: input.ActionMove, Magnet: a.selected, Pos: r2.Add(m.Position(), d)}}
}

// Draw renders one frame.
func (a *App) Draw() {
	a.screen.Clear()

	e := a.driver.Engine()
	bounds := e.Params().Bounds
	rows := a.height - 1 // last row is the status line
	if a.width <= 0 || rows <= 0 {
		a.screen.Show()
		return
	}

	lo, hi := e.StrengthRange()
	for _, p := range e.Particles() {
		cx, cy, ok := worldToCell(p.Position, bounds, a.width, rows)
		if !ok {
			continue
		}
		c := a.ramp.Strength(p.Magnitude, lo, hi)
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		a.screen.SetContent(cx, cy, arrowFor(p.Angle), nil, style)
	}

	a.drawMagnets(e, bounds, rows)
	a.drawStatus(e, lo, hi)

	a.screen.Show()
}

// drawMagnets fills every cell whose centre lies inside a magnet, labelled
// by the half it belongs to.
func (a *App) drawMagnets(e *field.Engine, bounds r2.Box, rows int) {
	magnets := e.Magnets()
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < a.width; cx++ {
			p := cellToWorld(cx, cy, bounds, a.width, rows)
			for i := len(magnets) - 1; i >= 0; i-- {
				m := &magnets[i]
				if !m.Contains(p) {
					continue
				}
				ch, style := 'S', southStyle
				if northHalf(m, p) {
					ch, style = 'N', northStyle
				}
				if field.MagnetID(i) == a.selected {
					style = style.Reverse(true)
				}
				a.screen.SetContent(cx, cy, ch, nil, style)
				break
			}
		}
	}
}

func (a *App) drawStatus(e *field.Engine, lo, hi float64) {
	status := statusLine(e.ParticleCount(), int(a.selected), e.Frame(), lo, hi, a.driver.Paused())
	for i, r := range []rune(status) {
		if i >= a.width {
			break
		}
		a.screen.SetContent(i, a.height-1, r, nil, statusStyle)
	}
}

// statusLine summarises the session for the bottom row.
func statusLine(particles, selected int, frame int64, lo, hi float64, paused bool) string {
	s := fmt.Sprintf(" particles %d | magnet #%d | frame %d | |B| %.3g..%.3g ", particles, selected, frame, lo, hi)
	if paused {
		s += "| PAUSED "
	}
	return s + "| tab q/e f arrows +/- r space p esc"
}

// arrowFor picks the glyph closest to angle.
func arrowFor(angle float64) rune {
	octant := int(math.Round(angle/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return arrows[octant]
}

// worldToCell maps a world point to a terminal cell. ok is false outside
// the grid.
func worldToCell(p r2.Vec, bounds r2.Box, cols, rows int) (cx, cy int, ok bool) {
	size := r2.Sub(bounds.Max, bounds.Min)
	fx := (p.X - bounds.Min.X) / size.X * float64(cols)
	fy := (p.Y - bounds.Min.Y) / size.Y * float64(rows)
	cx, cy = int(math.Floor(fx)), int(math.Floor(fy))
	if cx == cols && p.X == bounds.Max.X {
		cx--
	}
	if cy == rows && p.Y == bounds.Max.Y {
		cy--
	}
	return cx, cy, cx >= 0 && cx < cols && cy >= 0 && cy < rows
}

// cellToWorld returns the world point at the centre of a cell.
func cellToWorld(cx, cy int, bounds r2.Box, cols, rows int) r2.Vec {
	size := r2.Sub(bounds.Max, bounds.Min)
	return r2.Vec{
		X: bounds.Min.X + (float64(cx)+0.5)/float64(cols)*size.X,
		Y: bounds.Min.Y + (float64(cy)+0.5)/float64(rows)*size.Y,
	}
}

// northHalf reports whether p lies in the North half of m.
func northHalf(m *field.Magnet, p r2.Vec) bool {
	north, _ := m.LocalPoleOffsets()
	return m.WorldToLocal(p).X*north.X > 0
}
