package action

import (
	"time"

	"github.com/udisondev/arena/internal/model"
)

// Navigator is the movement capability the machine drives.
// Path finding is the implementation's business.
type Navigator interface {
	MoveTo(dest model.Location)
	Stop()
	RotateTo(heading uint16)
	IsMoving() bool
	RemainingDistance() float64
}

// LinearNavigator walks in a straight line at the actor's effective speed.
// The session calls Advance once per tick before polling the machines.
type LinearNavigator struct {
	actor    *model.Actor
	relocate func(a *model.Actor, loc model.Location)
	dest     model.Location
	moving   bool
}

// NewLinearNavigator creates a navigator. relocate must keep any spatial
// index in sync (world.World.Relocate).
func NewLinearNavigator(actor *model.Actor, relocate func(*model.Actor, model.Location)) *LinearNavigator {
	return &LinearNavigator{actor: actor, relocate: relocate}
}

// MoveTo starts or redirects movement.
func (n *LinearNavigator) MoveTo(dest model.Location) {
	n.dest = dest
	n.moving = true
}

// Stop halts movement in place.
func (n *LinearNavigator) Stop() {
	n.moving = false
}

// RotateTo turns the actor without moving it.
func (n *LinearNavigator) RotateTo(heading uint16) {
	n.actor.SetLocation(n.actor.Location().WithHeading(heading))
}

// IsMoving reports whether a destination is being followed.
func (n *LinearNavigator) IsMoving() bool {
	return n.moving
}

// RemainingDistance returns the distance left to the destination, 0 when stopped.
func (n *LinearNavigator) RemainingDistance() float64 {
	if !n.moving {
		return 0
	}
	return n.actor.Location().Distance(n.dest)
}

// Advance moves the actor by speed × dt toward the destination.
func (n *LinearNavigator) Advance(dt time.Duration) {
	if !n.moving || n.actor.IsDead() {
		return
	}
	step := n.actor.Speed() * dt.Seconds()
	if step <= 0 {
		return
	}

	next := n.actor.Location().StepToward(n.dest, step)
	n.relocate(n.actor, next)

	if next.DistanceSquared(n.dest) == 0 {
		n.moving = false
	}
}
