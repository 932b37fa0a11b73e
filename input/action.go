// Package input turns raw device events into scene actions and eases
// magnet rotation with critically damped springs.
package input

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
)

// Kind identifies what an Action asks for.
type Kind uint8

const (
	ActionMove        Kind = iota // move Magnet so its centre is at Pos
	ActionRotate                  // rotate Magnet by Delta radians (eased)
	ActionFlip                    // flip Magnet's polarity
	ActionSetCount                // set tracer count to Count
	ActionAdjustCount             // change tracer count by Count
	ActionToggleLines
	ActionTogglePause
	ActionReset
	ActionSnapshot
	ActionQuit
)

// Action is one requested scene change.
type Action struct {
	Kind   Kind
	Magnet field.MagnetID
	Pos    r2.Vec
	Delta  float64
	Count  int
}

// Picker finds magnets under a world point. *field.Engine satisfies it.
type Picker interface {
	MagnetAt(p r2.Vec) (field.MagnetID, bool)
	Magnet(id field.MagnetID) (field.Magnet, bool)
}

// dragMove returns the move that puts magnet id at the grab point plus
// offset. ok is false when the magnet is already there or gone, so a still
// pointer emits nothing.
func dragMove(p Picker, id field.MagnetID, grab, offset r2.Vec) (a Action, ok bool) {
	m, found := p.Magnet(id)
	if !found {
		return Action{}, false
	}
	pos := r2.Add(grab, offset)
	if pos == m.Position() {
		return Action{}, false
	}
	return Action{Kind: ActionMove, Magnet: id, Pos: pos}, true
}
