package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
)

// facingNorths puts two magnets end to end with their North poles facing,
// which leaves a null at the origin.
func facingNorths() *field.Engine {
	magnets := []field.Magnet{
		field.NewMagnet(r2.Vec{X: -150}, 0, 60, 15, 100000, field.PolarityNormal),
		field.NewMagnet(r2.Vec{X: 150}, 0, 60, 15, 100000, field.PolarityFlipped),
	}
	return field.New(field.DefaultParams(), magnets, 1)
}

func TestFindNullSymmetricScene(t *testing.T) {
	e := facingNorths()

	null, err := FindNull(e, r2.Vec{X: 5, Y: 3}, DefaultNullOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0, null.Pos.X, 0.1)
	assert.InDelta(t, 0, null.Pos.Y, 0.1)
	assert.Less(t, null.Residual, 1e-6)
	assert.Greater(t, null.Evaluations, 0)
}

func TestFindNullUniformField(t *testing.T) {
	uniform := SourceFunc(func(r2.Vec) r2.Vec { return r2.Vec{X: 1} })

	_, err := FindNull(uniform, r2.Vec{}, DefaultNullOptions())
	assert.True(t, errors.Is(err, ErrNoNull))
}

func TestFindNullsMergesDuplicates(t *testing.T) {
	e := facingNorths()
	bounds := r2.Box{Min: r2.Vec{X: -40, Y: -40}, Max: r2.Vec{X: 40, Y: 40}}

	nulls := FindNulls(e, bounds, 3, DefaultNullOptions())
	require.NotEmpty(t, nulls)

	assert.InDelta(t, 0, nulls[0].Pos.X, 0.1)
	assert.InDelta(t, 0, nulls[0].Pos.Y, 0.1)
	for i := 1; i < len(nulls); i++ {
		d := r2.Norm(r2.Sub(nulls[i].Pos, nulls[0].Pos))
		assert.Greater(t, d, DefaultNullOptions().MergeRadius)
	}
}

func TestTraceLineFollowsUniformField(t *testing.T) {
	uniform := SourceFunc(func(r2.Vec) r2.Vec { return r2.Vec{X: 3} })
	opts := LineOptions{
		Step:     2,
		MaxSteps: 10,
		Bounds:   r2.Box{Min: r2.Vec{X: -100, Y: -100}, Max: r2.Vec{X: 100, Y: 100}},
	}

	line := TraceLine(uniform, r2.Vec{}, 1, opts)
	require.Len(t, line, 11)
	assert.InDelta(t, 20, line[10].X, 1e-9)
	assert.InDelta(t, 0, line[10].Y, 1e-9)

	back := TraceLine(uniform, r2.Vec{}, -1, opts)
	assert.InDelta(t, -20, back[len(back)-1].X, 1e-9)
}

func TestTraceLineStopsAtBounds(t *testing.T) {
	uniform := SourceFunc(func(r2.Vec) r2.Vec { return r2.Vec{Y: 1} })
	opts := LineOptions{
		Step:     5,
		MaxSteps: 1000,
		Bounds:   r2.Box{Min: r2.Vec{X: -10, Y: -10}, Max: r2.Vec{X: 10, Y: 10}},
	}

	line := TraceLine(uniform, r2.Vec{}, 1, opts)
	last := line[len(line)-1]
	assert.Greater(t, last.Y, 10.0)
	assert.Len(t, line, 4)
}

func TestTraceLineStopsAtNull(t *testing.T) {
	zero := SourceFunc(func(r2.Vec) r2.Vec { return r2.Vec{} })
	opts := LineOptions{Step: 1, MaxSteps: 50, MinField: 1e-9}

	line := TraceLine(zero, r2.Vec{X: 4, Y: 4}, 1, opts)
	assert.Equal(t, []r2.Vec{{X: 4, Y: 4}}, line)
}

func TestFieldLinesEndAtSouthPole(t *testing.T) {
	magnets := []field.Magnet{
		field.NewMagnet(r2.Vec{}, 0, 60, 15, 100000, field.PolarityNormal),
	}
	e := field.New(field.DefaultParams(), magnets, 1)

	lines := FieldLines(e, 8, 4, 2000)
	require.Len(t, lines, 8)

	south := magnets[0].South()
	bounds := field.DefaultParams().Bounds
	for i, line := range lines {
		require.NotEmpty(t, line)
		last := line[len(line)-1]
		nearSouth := r2.Norm(r2.Sub(last, south)) <= 8
		leftBounds := !inside(bounds, last)
		assert.True(t, nearSouth || leftBounds, "line %d ended at %v", i, last)
	}
}

func TestPoleSeeds(t *testing.T) {
	center := r2.Vec{X: 10, Y: -5}
	seeds := PoleSeeds(center, 6, 3)
	require.Len(t, seeds, 6)
	for _, s := range seeds {
		assert.InDelta(t, 3, r2.Norm(r2.Sub(s, center)), 1e-9)
	}
}
