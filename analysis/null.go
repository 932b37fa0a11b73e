// Package analysis derives scene features from a field: null points where
// the net field vanishes and field lines that follow its direction.
package analysis

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNoNull is returned when the search ends without reaching a null.
var ErrNoNull = errors.New("no null point found")

// Source is anything that can evaluate the net field at a point.
// *field.Engine satisfies it.
type Source interface {
	FieldAt(p r2.Vec) r2.Vec
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(p r2.Vec) r2.Vec

// FieldAt calls f(p).
func (f SourceFunc) FieldAt(p r2.Vec) r2.Vec { return f(p) }

// Null is a point where the field (nearly) vanishes.
type Null struct {
	Pos         r2.Vec  `csv:"-"`
	X           float64 `csv:"x"`
	Y           float64 `csv:"y"`
	Residual    float64 `csv:"residual"` // |B|² at Pos
	Evaluations int     `csv:"evaluations"`
}

// NullOptions controls a null search.
type NullOptions struct {
	MaxEvals    int     // function evaluation cap per search
	SimplexSize float64 // initial Nelder-Mead simplex size, world units
	MaxResidual float64 // accept a minimum only if |B|² is below this
	MergeRadius float64 // FindNulls: results closer than this are one null
}

// DefaultNullOptions returns settings suited to the reference scene scale.
func DefaultNullOptions() NullOptions {
	return NullOptions{
		MaxEvals:    2000,
		SimplexSize: 10,
		MaxResidual: 1e-6,
		MergeRadius: 2,
	}
}

// FindNull minimises |B|² starting from start.
func FindNull(src Source, start r2.Vec, opts NullOptions) (Null, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return r2.Norm2(src.FieldAt(r2.Vec{X: x[0], Y: x[1]}))
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.MaxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Iterations: 200,
		},
	}
	method := &optimize.NelderMead{SimplexSize: opts.SimplexSize}

	// Evaluation limits end the run with an error but still leave the best
	// location; the residual check below decides whether it is a null.
	result, err := optimize.Minimize(problem, []float64{start.X, start.Y}, settings, method)
	if result == nil || len(result.X) != 2 {
		return Null{}, fmt.Errorf("minimizing from (%.1f, %.1f): %w", start.X, start.Y, err)
	}

	pos := r2.Vec{X: result.X[0], Y: result.X[1]}
	n := Null{
		Pos:         pos,
		X:           pos.X,
		Y:           pos.Y,
		Residual:    result.F,
		Evaluations: result.Stats.FuncEvaluations,
	}
	if result.F > opts.MaxResidual {
		return n, fmt.Errorf("from (%.1f, %.1f), residual %.3g: %w", start.X, start.Y, result.F, ErrNoNull)
	}
	return n, nil
}

// FindNulls runs FindNull from an n×n grid of starts over bounds and
// returns the distinct nulls inside bounds, lowest residual first.
func FindNulls(src Source, bounds r2.Box, n int, opts NullOptions) []Null {
	if n < 1 {
		return nil
	}
	size := r2.Sub(bounds.Max, bounds.Min)
	var found []Null
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			start := r2.Vec{
				X: bounds.Min.X + (float64(i)+0.5)*size.X/float64(n),
				Y: bounds.Min.Y + (float64(j)+0.5)*size.Y/float64(n),
			}
			null, err := FindNull(src, start, opts)
			if err != nil || !inside(bounds, null.Pos) {
				continue
			}
			found = merge(found, null, opts.MergeRadius)
		}
	}
	slices.SortFunc(found, func(a, b Null) int {
		switch {
		case a.Residual < b.Residual:
			return -1
		case a.Residual > b.Residual:
			return 1
		}
		return 0
	})
	return found
}

// merge adds n unless an existing null is within radius, in which case
// the better of the two is kept.
func merge(found []Null, n Null, radius float64) []Null {
	r2max := radius * radius
	for i := range found {
		if r2.Norm2(r2.Sub(found[i].Pos, n.Pos)) <= r2max {
			if n.Residual < found[i].Residual {
				found[i] = n
			}
			return found
		}
	}
	return append(found, n)
}

func inside(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
