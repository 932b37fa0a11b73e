package input

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/camera"
	"github.com/pthm-cable/magfield/config"
	"github.com/pthm-cable/magfield/field"
)

// Controller polls raylib for mouse and keyboard state.
type Controller struct {
	cam        *camera.Camera
	rotateStep float64
	countStep  int

	// Drag state
	dragging   bool
	dragMagnet field.MagnetID
	dragOffset r2.Vec // magnet centre minus grab point

	// Last magnet touched, target of keyboard rotate/flip
	selected    field.MagnetID
	hasSelected bool
}

// NewController creates a controller using the configured steps.
func NewController(cam *camera.Camera, cfg *config.Config) *Controller {
	return &Controller{
		cam:        cam,
		rotateStep: cfg.Input.RotateStep,
		countStep:  cfg.Input.CountStep,
	}
}

// Selected returns the magnet keyboard commands act on.
func (c *Controller) Selected() (field.MagnetID, bool) {
	return c.selected, c.hasSelected
}

// Dragging reports whether a magnet is being dragged.
func (c *Controller) Dragging() bool {
	return c.dragging
}

// Poll reads this frame's input. blocked is true when the pointer is over
// a UI widget, in which case mouse actions on the scene are skipped.
func (c *Controller) Poll(p Picker, blocked bool) []Action {
	var actions []Action

	mouse := rl.GetMousePosition()
	world := c.cam.ScreenToWorld(mouse.X, mouse.Y)
	hover, overMagnet := p.MagnetAt(world)

	if c.dragging && !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		c.dragging = false
	}
	if !blocked {
		actions = c.pollMouse(p, world, hover, overMagnet, actions)
	}
	actions = c.pollKeys(p, actions)
	c.pollCamera(mouse, blocked || overMagnet)

	return actions
}

func (c *Controller) pollMouse(p Picker, world r2.Vec, hover field.MagnetID, overMagnet bool, actions []Action) []Action {
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && overMagnet {
		m, _ := p.Magnet(hover)
		c.dragging = true
		c.dragMagnet = hover
		c.dragOffset = r2.Sub(m.Position(), world)
		c.selected, c.hasSelected = hover, true
	}
	if c.dragging {
		if a, ok := dragMove(p, c.dragMagnet, world, c.dragOffset); ok {
			actions = append(actions, a)
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) && overMagnet {
		c.selected, c.hasSelected = hover, true
		actions = append(actions, Action{Kind: ActionFlip, Magnet: hover})
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && overMagnet {
		c.selected, c.hasSelected = hover, true
		actions = append(actions, Action{
			Kind:   ActionRotate,
			Magnet: hover,
			Delta:  float64(wheel) * c.rotateStep,
		})
	}

	return actions
}

func (c *Controller) pollKeys(p Picker, actions []Action) []Action {
	if c.hasSelected {
		if _, ok := p.Magnet(c.selected); !ok {
			c.hasSelected = false
		}
	}

	if c.hasSelected {
		if rl.IsKeyPressed(rl.KeyQ) {
			actions = append(actions, Action{Kind: ActionRotate, Magnet: c.selected, Delta: -c.rotateStep})
		}
		if rl.IsKeyPressed(rl.KeyE) {
			actions = append(actions, Action{Kind: ActionRotate, Magnet: c.selected, Delta: c.rotateStep})
		}
		if rl.IsKeyPressed(rl.KeyF) {
			actions = append(actions, Action{Kind: ActionFlip, Magnet: c.selected})
		}
	}

	// Tab cycles the selection through the magnets
	if rl.IsKeyPressed(rl.KeyTab) {
		next := c.selected + 1
		if !c.hasSelected {
			next = 0
		}
		if _, ok := p.Magnet(next); !ok {
			next = 0
		}
		if _, ok := p.Magnet(next); ok {
			c.selected, c.hasSelected = next, true
		}
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		actions = append(actions, Action{Kind: ActionAdjustCount, Count: c.countStep})
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		actions = append(actions, Action{Kind: ActionAdjustCount, Count: -c.countStep})
	}
	if rl.IsKeyPressed(rl.KeyL) {
		actions = append(actions, Action{Kind: ActionToggleLines})
	}
	if rl.IsKeyPressed(rl.KeyR) {
		actions = append(actions, Action{Kind: ActionReset})
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		actions = append(actions, Action{Kind: ActionTogglePause})
	}
	if rl.IsKeyPressed(rl.KeyP) {
		actions = append(actions, Action{Kind: ActionSnapshot})
	}

	return actions
}

// pollCamera handles pan and zoom directly; they never touch the scene.
// The wheel zooms only when it is not rotating a magnet.
func (c *Controller) pollCamera(mouse rl.Vector2, wheelTaken bool) {
	// Screen pixels per frame; Pan divides by zoom
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		c.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		c.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		c.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		c.cam.Pan(0, -panSpeed)
	}

	// Middle-drag pans
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		c.cam.Pan(-d.X, -d.Y)
	}

	// Wheel over empty space zooms toward the cursor
	if !wheelTaken && !c.dragging {
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			c.cam.ZoomAt(mouse.X, mouse.Y, 1.0+float64(wheel)*0.1)
		}
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		c.cam.Reset()
	}
}
