package action

import (
	"errors"
	"time"

	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
)

// Completion reasons reported in ActionCompleted.
const (
	reasonArrived     = "arrived"
	reasonTargetLost  = "target_lost"
	reasonResolved    = "resolved"
	reasonRejected    = "rejected"
	reasonInterrupted = "interrupted"
	reasonStopped     = "stopped"
	reasonSuperseded  = "superseded"
)

// task is the resumable body of an action. The machine polls it once per
// tick; poll reports done when the action finished on its own.
type task interface {
	start(now time.Time, m *Machine)
	poll(now time.Time, m *Machine) (done bool, reason string)
	abort(now time.Time, m *Machine, reason error)
	pending() *skill.PendingCast
}

// moveTask walks to a destination.
type moveTask struct {
	dest model.Location
}

func (t *moveTask) start(_ time.Time, m *Machine) {
	m.nav.MoveTo(t.dest)
}

func (t *moveTask) poll(_ time.Time, m *Machine) (bool, string) {
	if !m.nav.IsMoving() || m.nav.RemainingDistance() <= m.deps.StoppingDistance {
		return true, reasonArrived
	}
	return false, ""
}

func (t *moveTask) abort(time.Time, *Machine, error) {}

func (t *moveTask) pending() *skill.PendingCast { return nil }

// attackTask chases a target and hits it with the kit's basic attack
// each time the attack comes off cooldown.
type attackTask struct {
	targetID uint32
	skill    skill.Skill
	cast     *skill.PendingCast
}

func (t *attackTask) start(time.Time, *Machine) {}

func (t *attackTask) poll(now time.Time, m *Machine) (bool, string) {
	casts := m.deps.Casts
	actor := m.actor

	// Basic attack с cast time: ждём окончания, потом коммитим.
	if t.cast != nil && !t.cast.Resolved() {
		if !t.cast.Ready(now) {
			return false, ""
		}
		err := casts.Commit(now, actor, t.cast)
		t.cast = nil
		if errors.Is(err, skill.ErrInvalidTarget) {
			return true, reasonTargetLost
		}
	}

	target, ok := m.deps.World.Actor(t.targetID)
	if !ok || target.IsDead() {
		return true, reasonTargetLost
	}

	def := t.skill.Definition()
	if !actor.Location().InRange(target.Location(), def.Range) {
		m.nav.MoveTo(target.Location())
		return false, ""
	}

	if m.nav.IsMoving() {
		m.nav.Stop()
	}
	m.nav.RotateTo(actor.Location().HeadingTo(target.Location()))

	p, err := casts.Begin(now, actor, def.ID, skill.UseBasicAttack, skill.Target{ActorID: t.targetID})
	switch {
	case errors.Is(err, skill.ErrInvalidTarget):
		return true, reasonTargetLost
	case errors.Is(err, skill.ErrOnCooldown), errors.Is(err, skill.ErrGlobalCooldown):
		return false, ""
	case p == nil && err != nil:
		// mana or state: the loop cannot make progress
		return true, reasonRejected
	}
	if !p.Resolved() {
		t.cast = p
	}
	return false, ""
}

func (t *attackTask) abort(now time.Time, m *Machine, reason error) {
	if t.cast != nil && !t.cast.Resolved() {
		m.deps.Casts.Abort(now, m.actor, t.cast, reason)
	}
}

func (t *attackTask) pending() *skill.PendingCast {
	if t.cast != nil && !t.cast.Resolved() {
		return t.cast
	}
	return nil
}

// castTask approaches into range, then casts one skill and waits out its cast time.
type castTask struct {
	skill  skill.Skill
	target skill.Target
	cast   *skill.PendingCast
}

func (t *castTask) start(time.Time, *Machine) {}

func (t *castTask) poll(now time.Time, m *Machine) (bool, string) {
	casts := m.deps.Casts
	actor := m.actor

	if t.cast != nil {
		if !t.cast.Ready(now) {
			return false, ""
		}
		if err := casts.Commit(now, actor, t.cast); err != nil && !t.cast.Committed() {
			return true, reasonRejected
		}
		return true, reasonResolved
	}

	def := t.skill.Definition()
	if def.Targeting.NeedsRange() {
		res, err := casts.ResolveTarget(actor, def, t.target)
		if err != nil {
			return true, reasonTargetLost
		}
		if !actor.Location().InRange(res.Point, def.Range) {
			m.nav.MoveTo(res.Point)
			return false, ""
		}
		if m.nav.IsMoving() {
			m.nav.Stop()
		}
		if res.Actor != actor {
			m.nav.RotateTo(actor.Location().HeadingTo(res.Point))
		}
	}

	p, err := casts.Begin(now, actor, def.ID, skill.UseCast, t.target)
	if p == nil {
		return true, reasonRejected
	}
	if p.Resolved() {
		if err != nil && !p.Committed() {
			return true, reasonRejected
		}
		return true, reasonResolved
	}
	t.cast = p
	return false, ""
}

func (t *castTask) abort(now time.Time, m *Machine, reason error) {
	if t.cast != nil && !t.cast.Resolved() {
		m.deps.Casts.Abort(now, m.actor, t.cast, reason)
	}
}

func (t *castTask) pending() *skill.PendingCast {
	if t.cast != nil && !t.cast.Resolved() {
		return t.cast
	}
	return nil
}
