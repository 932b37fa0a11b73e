// Package field implements the magnetic field tracer simulation: a set of
// bar magnets and a set of stationary probe particles whose field reading
// is recomputed once per frame.
package field

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/config"
)

// Boundary errors. Engine state is left untouched when one is returned.
var (
	ErrUnknownMagnet = errors.New("unknown magnet")
	ErrNonFinitePose = errors.New("non-finite magnet pose")
	ErrBadStrength   = errors.New("pole strength must be finite and non-negative")
)

// Params holds the numeric guards and bounds of an engine.
type Params struct {
	MinDistSq      float64 // floor on squared pole distance
	UniformEpsilon float64 // added to max when max == min
	ZeroEpsilon    float64 // max floor when there is no field anywhere
	Bounds         r2.Box  // where new tracers are scattered
	MaxParticles   int     // 0 = unbounded
}

// DefaultParams returns the reference scene's guards and an 800x600
// viewport centred on the origin.
func DefaultParams() Params {
	return Params{
		MinDistSq:      3600,
		UniformEpsilon: 0.1,
		ZeroEpsilon:    0.1,
		Bounds: r2.Box{
			Min: r2.Vec{X: -400, Y: -300},
			Max: r2.Vec{X: 400, Y: 300},
		},
	}
}

// ParamsFromConfig maps the loaded config onto engine parameters.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		MinDistSq:      cfg.Field.MinDistSq,
		UniformEpsilon: cfg.Field.UniformEpsilon,
		ZeroEpsilon:    cfg.Field.ZeroEpsilon,
		Bounds: r2.Box{
			Min: r2.Vec{X: cfg.Viewport.MinX, Y: cfg.Viewport.MinY},
			Max: r2.Vec{X: cfg.Viewport.MaxX, Y: cfg.Viewport.MaxY},
		},
		MaxParticles: cfg.Particles.Max,
	}
}

// MagnetsFromConfig builds the configured initial magnets.
func MagnetsFromConfig(cfg *config.Config) []Magnet {
	mc := cfg.Magnets
	magnets := make([]Magnet, 0, len(mc.Initial))
	for _, pose := range mc.Initial {
		pol := PolarityNormal
		if pose.Flipped {
			pol = PolarityFlipped
		}
		magnets = append(magnets, NewMagnet(
			r2.Vec{X: pose.X, Y: pose.Y}, pose.Angle,
			mc.HalfWidth, mc.HalfHeight, mc.PoleStrength, pol,
		))
	}
	return magnets
}

// Probe is the fixed world position of a tracer.
type Probe struct {
	Pos r2.Vec
}

// Reading is the most recent field sample at a tracer.
type Reading struct {
	Angle     float64 // radians, held when the field is zero
	Magnitude float64
}

// Particle is a read-only view of one tracer.
type Particle struct {
	Position  r2.Vec
	Angle     float64
	Magnitude float64
}

// Engine owns the magnets and tracers of one session.
// It is driven from a single goroutine: mutations happen between frames.
type Engine struct {
	params Params
	rng    *rand.Rand

	magnets []Magnet
	initial []Magnet

	// Tracers live in the ECS world; order keeps creation order so the
	// tail can be trimmed and renderers see a stable sequence.
	world   *ecs.World
	tracers *ecs.Map2[Probe, Reading]
	order   []ecs.Entity

	strengths   []float64 // per-frame scratch, parallel to order
	minStrength float64
	maxStrength float64
	zeroCount   int
	frame       int64
}

// New creates an engine with the given magnets and no tracers.
func New(params Params, magnets []Magnet, seed int64) *Engine {
	world := ecs.NewWorld()

	e := &Engine{
		params:      params,
		rng:         rand.New(rand.NewSource(seed)),
		magnets:     append([]Magnet(nil), magnets...),
		initial:     append([]Magnet(nil), magnets...),
		world:       world,
		tracers:     ecs.NewMap2[Probe, Reading](world),
		maxStrength: params.ZeroEpsilon,
	}
	return e
}

// NewFromConfig creates an engine for the configured scene, already
// populated with the initial tracer count.
func NewFromConfig(cfg *config.Config, seed int64) *Engine {
	e := New(ParamsFromConfig(cfg), MagnetsFromConfig(cfg), seed)
	e.SetParticleTarget(cfg.Particles.Initial)
	return e
}

// SetMagnetPose moves and rotates a magnet; its poles follow immediately.
func (e *Engine) SetMagnetPose(id MagnetID, position r2.Vec, angle float64) error {
	m, err := e.magnet(id)
	if err != nil {
		return err
	}
	if !finite(position.X) || !finite(position.Y) || !finite(angle) {
		return fmt.Errorf("magnet %d: %w", id, ErrNonFinitePose)
	}
	m.setPose(position, angle)
	return nil
}

// FlipPolarity swaps which end of a magnet is North.
func (e *Engine) FlipPolarity(id MagnetID) error {
	m, err := e.magnet(id)
	if err != nil {
		return err
	}
	m.flip()
	return nil
}

// SetPoleStrength changes the strength of both poles of a magnet.
func (e *Engine) SetPoleStrength(id MagnetID, strength float64) error {
	m, err := e.magnet(id)
	if err != nil {
		return err
	}
	if !finite(strength) || strength < 0 {
		return fmt.Errorf("magnet %d: %w", id, ErrBadStrength)
	}
	m.strength = strength
	return nil
}

// Reset restores every magnet to its initial pose and polarity.
// Tracers are kept.
func (e *Engine) Reset() {
	copy(e.magnets, e.initial)
}

func (e *Engine) magnet(id MagnetID) (*Magnet, error) {
	if id < 0 || int(id) >= len(e.magnets) {
		return nil, fmt.Errorf("magnet %d: %w", id, ErrUnknownMagnet)
	}
	return &e.magnets[id], nil
}

// SetParticleTarget grows or shrinks the tracer set to count.
// Negative counts clamp to zero and counts above MaxParticles clamp to it.
// New tracers are appended at random positions inside the bounds;
// removal trims from the tail.
func (e *Engine) SetParticleTarget(count int) {
	count = e.clampCount(count)

	for len(e.order) < count {
		e.spawn(e.randomPoint())
	}
	for len(e.order) > count {
		last := len(e.order) - 1
		e.world.RemoveEntity(e.order[last])
		e.order = e.order[:last]
	}
	e.strengths = e.strengths[:len(e.order)]
}

// AddParticle appends a tracer at an explicit position.
// Returns false when the tracer cap is reached.
func (e *Engine) AddParticle(pos r2.Vec) bool {
	if e.params.MaxParticles > 0 && len(e.order) >= e.params.MaxParticles {
		return false
	}
	e.spawn(pos)
	return true
}

func (e *Engine) spawn(pos r2.Vec) {
	probe := Probe{Pos: pos}
	reading := Reading{}
	entity := e.tracers.NewEntity(&probe, &reading)
	e.order = append(e.order, entity)
	e.strengths = append(e.strengths, 0)
}

func (e *Engine) clampCount(count int) int {
	if count < 0 {
		return 0
	}
	if e.params.MaxParticles > 0 && count > e.params.MaxParticles {
		return e.params.MaxParticles
	}
	return count
}

func (e *Engine) randomPoint() r2.Vec {
	b := e.params.Bounds
	return r2.Vec{
		X: b.Min.X + e.rng.Float64()*(b.Max.X-b.Min.X),
		Y: b.Min.Y + e.rng.Float64()*(b.Max.Y-b.Min.Y),
	}
}

// AdvanceFrame recomputes every tracer's reading from the current
// magnets, then the observed strength range.
func (e *Engine) AdvanceFrame() {
	e.zeroCount = 0
	for i, entity := range e.order {
		probe, reading := e.tracers.Get(entity)

		b := Superpose(e.magnets, probe.Pos, e.params.MinDistSq)
		reading.Magnitude = math.Hypot(b.X, b.Y)
		if b.X != 0 || b.Y != 0 {
			reading.Angle = math.Atan2(b.Y, b.X)
		} else {
			// Hold last heading
			e.zeroCount++
		}
		e.strengths[i] = reading.Magnitude
	}

	e.updateRange()
	e.frame++
}

// updateRange recomputes the observed min/max. The range is left as is
// for an empty tracer set.
func (e *Engine) updateRange() {
	if len(e.strengths) == 0 {
		return
	}
	lo := floats.Min(e.strengths)
	hi := floats.Max(e.strengths)
	if hi == lo {
		hi += e.params.UniformEpsilon
	}
	if hi == 0 {
		hi = e.params.ZeroEpsilon
	}
	e.minStrength = lo
	e.maxStrength = hi
}

// FieldAt evaluates the net field at an arbitrary point with the same
// clamping as the tracers.
func (e *Engine) FieldAt(p r2.Vec) r2.Vec {
	return Superpose(e.magnets, p, e.params.MinDistSq)
}

// Superpose sums the point-pole contributions of every magnet at p.
// North pushes away from its pole, South pulls toward it, both scaled by
// strength / max(d², minDistSq). A pole exactly at p contributes nothing.
func Superpose(magnets []Magnet, p r2.Vec, minDistSq float64) r2.Vec {
	var b r2.Vec
	for i := range magnets {
		m := &magnets[i]
		b = r2.Add(b, poleField(p, m.north, m.strength, minDistSq))
		b = r2.Sub(b, poleField(p, m.south, m.strength, minDistSq))
	}
	return b
}

// poleField is the outward field of a single pole of the given strength.
func poleField(p, pole r2.Vec, strength, minDistSq float64) r2.Vec {
	r := r2.Sub(p, pole)
	d2 := r2.Norm2(r)
	if d2 == 0 {
		return r2.Vec{}
	}
	clamped := math.Max(d2, minDistSq)
	return r2.Scale(strength/(clamped*math.Sqrt(d2)), r)
}

// ParticleCount returns the number of tracers.
func (e *Engine) ParticleCount() int {
	return len(e.order)
}

// Particle returns tracer i in creation order. Panics if i is out of range.
func (e *Engine) Particle(i int) Particle {
	probe, reading := e.tracers.Get(e.order[i])
	return Particle{Position: probe.Pos, Angle: reading.Angle, Magnitude: reading.Magnitude}
}

// AppendParticles appends a view of every tracer to dst and returns it.
// Renderers reuse dst between frames.
func (e *Engine) AppendParticles(dst []Particle) []Particle {
	for _, entity := range e.order {
		probe, reading := e.tracers.Get(entity)
		dst = append(dst, Particle{Position: probe.Pos, Angle: reading.Angle, Magnitude: reading.Magnitude})
	}
	return dst
}

// Particles returns a fresh slice with every tracer.
func (e *Engine) Particles() []Particle {
	return e.AppendParticles(make([]Particle, 0, len(e.order)))
}

// MagnetCount returns the number of magnets.
func (e *Engine) MagnetCount() int {
	return len(e.magnets)
}

// Magnet returns a copy of one magnet.
func (e *Engine) Magnet(id MagnetID) (Magnet, bool) {
	if id < 0 || int(id) >= len(e.magnets) {
		return Magnet{}, false
	}
	return e.magnets[id], true
}

// Magnets returns a copy of the magnet sequence.
func (e *Engine) Magnets() []Magnet {
	return append([]Magnet(nil), e.magnets...)
}

// MagnetAt returns the topmost magnet whose body contains p.
func (e *Engine) MagnetAt(p r2.Vec) (MagnetID, bool) {
	for i := len(e.magnets) - 1; i >= 0; i-- {
		if e.magnets[i].Contains(p) {
			return MagnetID(i), true
		}
	}
	return 0, false
}

// MinStrength returns the lowest tracer magnitude of the last frame.
func (e *Engine) MinStrength() float64 { return e.minStrength }

// MaxStrength returns the highest tracer magnitude of the last frame,
// widened so that it is always greater than MinStrength.
func (e *Engine) MaxStrength() float64 { return e.maxStrength }

// StrengthRange returns MinStrength and MaxStrength together.
func (e *Engine) StrengthRange() (lo, hi float64) {
	return e.minStrength, e.maxStrength
}

// ZeroFieldCount returns how many tracers read a zero field last frame.
func (e *Engine) ZeroFieldCount() int { return e.zeroCount }

// Frame returns the number of completed frames.
func (e *Engine) Frame() int64 { return e.frame }

// Params returns the engine parameters.
func (e *Engine) Params() Params { return e.params }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
