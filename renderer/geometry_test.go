package renderer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
)

func near(a, b r2.Vec) bool {
	return r2.Norm(r2.Sub(a, b)) < 1e-9
}

func TestTracerSegment(t *testing.T) {
	tail, tip := tracerSegment(r2.Vec{X: 10, Y: 10}, math.Pi/2, 8)
	if !near(tail, r2.Vec{X: 10, Y: 6}) || !near(tip, r2.Vec{X: 10, Y: 14}) {
		t.Errorf("segment = %v -> %v, want (10,6) -> (10,14)", tail, tip)
	}
}

func TestHalfCentres(t *testing.T) {
	m := field.NewMagnet(r2.Vec{X: 100}, 0, 60, 15, 1, field.PolarityNormal)
	n, s := halfCentres(&m)
	if !near(n, r2.Vec{X: 130}) || !near(s, r2.Vec{X: 70}) {
		t.Errorf("halves = %v, %v; want (130,0), (70,0)", n, s)
	}

	m = field.NewMagnet(r2.Vec{X: 100}, 0, 60, 15, 1, field.PolarityFlipped)
	n, s = halfCentres(&m)
	if !near(n, r2.Vec{X: 70}) || !near(s, r2.Vec{X: 130}) {
		t.Errorf("flipped halves = %v, %v; want (70,0), (130,0)", n, s)
	}
}

func TestDegrees(t *testing.T) {
	if got := degrees(math.Pi); math.Abs(float64(got)-180) > 1e-4 {
		t.Errorf("degrees(pi) = %v", got)
	}
}
