package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
)

// LineOptions controls field-line tracing.
type LineOptions struct {
	Step       float64 // arc length per step
	MaxSteps   int
	Bounds     r2.Box   // tracing stops when the line leaves this box
	Sinks      []r2.Vec // tracing stops within StopRadius of any of these
	StopRadius float64
	MinField   float64 // tracing stops where |B| falls below this
}

// TraceLine follows the field direction from start using midpoint steps.
// A negative direction traces against the field. The returned polyline
// always begins with start.
func TraceLine(src Source, start r2.Vec, direction float64, opts LineOptions) []r2.Vec {
	sign := 1.0
	if direction < 0 {
		sign = -1
	}
	h := sign * opts.Step
	stop2 := opts.StopRadius * opts.StopRadius

	line := make([]r2.Vec, 1, opts.MaxSteps+1)
	line[0] = start
	p := start
	for i := 0; i < opts.MaxSteps; i++ {
		d1, ok := unitField(src, p, opts.MinField)
		if !ok {
			break
		}
		mid := r2.Add(p, r2.Scale(h/2, d1))
		d2, ok := unitField(src, mid, opts.MinField)
		if !ok {
			break
		}
		p = r2.Add(p, r2.Scale(h, d2))
		line = append(line, p)

		if !inside(opts.Bounds, p) || nearAny(opts.Sinks, p, stop2) {
			break
		}
	}
	return line
}

// unitField returns the unit field direction at p, or false at a null.
func unitField(src Source, p r2.Vec, minField float64) (r2.Vec, bool) {
	b := src.FieldAt(p)
	n := r2.Norm(b)
	if n <= minField || math.IsNaN(n) {
		return r2.Vec{}, false
	}
	return r2.Scale(1/n, b), true
}

func nearAny(points []r2.Vec, p r2.Vec, r2max float64) bool {
	for _, q := range points {
		if r2.Norm2(r2.Sub(p, q)) <= r2max {
			return true
		}
	}
	return false
}

// PoleSeeds returns n points evenly spaced on a circle around center.
func PoleSeeds(center r2.Vec, n int, radius float64) []r2.Vec {
	seeds := make([]r2.Vec, n)
	for i := range seeds {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		seeds[i] = r2.Vec{X: center.X + radius*cos, Y: center.Y + radius*sin}
	}
	return seeds
}

// FieldLines traces lines out of every North pole of the engine's magnets,
// ending at South poles, nulls or the engine bounds.
func FieldLines(e *field.Engine, seedsPerPole int, step float64, maxSteps int) [][]r2.Vec {
	magnets := e.Magnets()
	params := e.Params()

	sinks := make([]r2.Vec, 0, len(magnets))
	for i := range magnets {
		sinks = append(sinks, magnets[i].South())
	}
	radius := 2 * step
	opts := LineOptions{
		Step:       step,
		MaxSteps:   maxSteps,
		Bounds:     params.Bounds,
		Sinks:      sinks,
		StopRadius: radius,
		MinField:   1e-9,
	}

	var lines [][]r2.Vec
	for i := range magnets {
		for _, seed := range PoleSeeds(magnets[i].North(), seedsPerPole, radius) {
			lines = append(lines, TraceLine(e, seed, 1, opts))
		}
	}
	return lines
}
