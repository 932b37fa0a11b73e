package input

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
)

func newDragScene() *field.Engine {
	magnets := []field.Magnet{
		field.NewMagnet(r2.Vec{X: 100, Y: 50}, 0, 40, 15, 1, field.PolarityNormal),
	}
	return field.New(field.DefaultParams(), magnets, 1)
}

func TestDragMoveStillPointer(t *testing.T) {
	e := newDragScene()
	offset := r2.Vec{X: 5, Y: -2}
	grab := r2.Sub(r2.Vec{X: 100, Y: 50}, offset)

	if a, ok := dragMove(e, 0, grab, offset); ok {
		t.Errorf("held pointer over an unmoved magnet emitted %+v", a)
	}
}

func TestDragMoveFollowsPointer(t *testing.T) {
	e := newDragScene()
	offset := r2.Vec{X: 5, Y: -2}

	a, ok := dragMove(e, 0, r2.Vec{X: 10, Y: 10}, offset)
	if !ok {
		t.Fatal("moved pointer emitted nothing")
	}
	want := Action{Kind: ActionMove, Magnet: 0, Pos: r2.Vec{X: 15, Y: 8}}
	if a != want {
		t.Errorf("dragMove = %+v, want %+v", a, want)
	}
}

func TestDragMoveUnknownMagnet(t *testing.T) {
	e := newDragScene()
	if _, ok := dragMove(e, 3, r2.Vec{}, r2.Vec{}); ok {
		t.Error("drag of a missing magnet should emit nothing")
	}
}
