package input

import (
	"math"
	"sort"

	"github.com/charmbracelet/harmonica"

	"github.com/pthm-cable/magfield/field"
)

// settleEps is how close angle and velocity must be to rest before a
// spring is considered settled.
const settleEps = 1e-4

type rotation struct {
	angle, vel, target float64
}

// Rotator eases magnet angles toward their targets.
type Rotator struct {
	spring harmonica.Spring
	active map[field.MagnetID]*rotation
}

// NewRotator creates a rotator stepping at fps with the given spring
// frequency and damping ratio.
func NewRotator(fps int, frequency, damping float64) *Rotator {
	return &Rotator{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		active: make(map[field.MagnetID]*rotation),
	}
}

// Nudge adds delta to the magnet's target angle. current is used as the
// start angle when the magnet is not already turning.
func (r *Rotator) Nudge(id field.MagnetID, current, delta float64) {
	rot, ok := r.active[id]
	if !ok {
		rot = &rotation{angle: current, target: current}
		r.active[id] = rot
	}
	rot.target += delta
}

// Target returns the angle a turning magnet is heading for.
func (r *Rotator) Target(id field.MagnetID) (float64, bool) {
	rot, ok := r.active[id]
	if !ok {
		return 0, false
	}
	return rot.target, true
}

// Active reports whether any magnet is still turning.
func (r *Rotator) Active() bool {
	return len(r.active) > 0
}

// Step advances every spring one frame and calls apply with each new
// angle, in magnet order. Settled magnets land exactly on their target.
func (r *Rotator) Step(apply func(id field.MagnetID, angle float64)) {
	ids := make([]field.MagnetID, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		rot := r.active[id]
		rot.angle, rot.vel = r.spring.Update(rot.angle, rot.vel, rot.target)
		if math.Abs(rot.angle-rot.target) < settleEps && math.Abs(rot.vel) < settleEps {
			rot.angle = rot.target
			delete(r.active, id)
		}
		apply(id, rot.angle)
	}
}

// Cancel drops any pending rotation, e.g. when the scene is reset.
func (r *Rotator) Cancel() {
	clear(r.active)
}
