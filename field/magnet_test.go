package field

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func assertVecNear(t *testing.T, want, got r2.Vec, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-9, msgAndArgs...)
}

func TestPolesAtRest(t *testing.T) {
	m := NewMagnet(r2.Vec{X: 10, Y: 5}, 0, 60, 15, 1, PolarityNormal)
	assertVecNear(t, r2.Vec{X: 70, Y: 5}, m.North())
	assertVecNear(t, r2.Vec{X: -50, Y: 5}, m.South())

	m = NewMagnet(r2.Vec{X: 10, Y: 5}, 0, 60, 15, 1, PolarityFlipped)
	assertVecNear(t, r2.Vec{X: -50, Y: 5}, m.North())
	assertVecNear(t, r2.Vec{X: 70, Y: 5}, m.South())
}

func TestPolesQuarterTurn(t *testing.T) {
	m := NewMagnet(r2.Vec{}, math.Pi/2, 60, 15, 1, PolarityNormal)
	assertVecNear(t, r2.Vec{X: 0, Y: 60}, m.North())
	assertVecNear(t, r2.Vec{X: 0, Y: -60}, m.South())
}

func TestPolesFollowPose(t *testing.T) {
	e := New(DefaultParams(), referenceMagnets(testHalfWidth), 1)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 50; i++ {
		id := MagnetID(rng.Intn(e.MagnetCount()))
		pos := r2.Vec{X: rng.Float64()*800 - 400, Y: rng.Float64()*600 - 300}
		angle := rng.Float64()*4*math.Pi - 2*math.Pi
		if rng.Intn(3) == 0 {
			if err := e.FlipPolarity(id); err != nil {
				t.Fatal(err)
			}
		}
		if err := e.SetMagnetPose(id, pos, angle); err != nil {
			t.Fatal(err)
		}

		m, ok := e.Magnet(id)
		if !ok {
			t.Fatalf("magnet %d missing", id)
		}
		sign := 1.0
		if m.Polarity() == PolarityFlipped {
			sign = -1
		}
		w := m.HalfWidth()
		wantN := r2.Vec{X: pos.X + sign*w*math.Cos(angle), Y: pos.Y + sign*w*math.Sin(angle)}
		wantS := r2.Vec{X: pos.X - sign*w*math.Cos(angle), Y: pos.Y - sign*w*math.Sin(angle)}
		assertVecNear(t, wantN, m.North(), "north, iteration %d", i)
		assertVecNear(t, wantS, m.South(), "south, iteration %d", i)
	}
}

func TestFlipIsInvolution(t *testing.T) {
	e := New(DefaultParams(), referenceMagnets(testHalfWidth), 1)
	if err := e.SetMagnetPose(1, r2.Vec{X: 33, Y: -12}, 0.7); err != nil {
		t.Fatal(err)
	}
	before, _ := e.Magnet(1)

	if err := e.FlipPolarity(1); err != nil {
		t.Fatal(err)
	}
	flipped, _ := e.Magnet(1)
	assertVecNear(t, before.North(), flipped.South())
	assertVecNear(t, before.South(), flipped.North())

	if err := e.FlipPolarity(1); err != nil {
		t.Fatal(err)
	}
	after, _ := e.Magnet(1)
	assert.Equal(t, before, after)
}

func TestFlipReversesField(t *testing.T) {
	e := New(DefaultParams(), singleMagnet(), 1)
	p := r2.Vec{X: 40, Y: 90}
	b := e.FieldAt(p)

	if err := e.FlipPolarity(0); err != nil {
		t.Fatal(err)
	}
	assertVecNear(t, r2.Scale(-1, b), e.FieldAt(p))
}

func TestContains(t *testing.T) {
	m := NewMagnet(r2.Vec{X: 100, Y: 100}, math.Pi/2, 60, 15, 1, PolarityNormal)

	tests := []struct {
		name string
		p    r2.Vec
		want bool
	}{
		{"centre", r2.Vec{X: 100, Y: 100}, true},
		{"along rotated long axis", r2.Vec{X: 100, Y: 150}, true},
		{"along world x beyond short side", r2.Vec{X: 130, Y: 100}, false},
		{"past the north end", r2.Vec{X: 100, Y: 170}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Contains(tt.p))
		})
	}
}

func TestLocalWorldRoundTrip(t *testing.T) {
	m := NewMagnet(r2.Vec{X: -20, Y: 45}, 2.1, 60, 15, 1, PolarityNormal)
	local := r2.Vec{X: 12, Y: -7}
	assertVecNear(t, local, m.WorldToLocal(m.LocalToWorld(local)))
}
