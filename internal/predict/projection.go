// Package predict keeps a client-side projection of the replicated arena
// state and answers local pre-checks against it.
//
// The projection may lag behind the authority. A pre-check that passes here
// can still be rejected by the server; the server result always wins.
package predict

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/arena/internal/game/cooldown"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
)

// Lookup resolves skill ids (skill.Registry).
type Lookup interface {
	Get(id int32) (skill.Skill, bool)
}

// Projection is the replicated view of every actor seen on the wire.
// Safe for concurrent use.
type Projection struct {
	self   uint32
	skills Lookup

	mu     sync.RWMutex
	actors map[uint32]model.ActorSnapshot
}

// NewProjection creates an empty projection for the actor the client plays.
func NewProjection(self uint32, skills Lookup) *Projection {
	return &Projection{
		self:   self,
		skills: skills,
		actors: make(map[uint32]model.ActorSnapshot),
	}
}

// Self returns the bound actor id.
func (p *Projection) Self() uint32 {
	return p.self
}

// Reset replaces the whole view (welcome message).
func (p *Projection) Reset(actors []model.ActorSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clear(p.actors)
	for _, a := range actors {
		p.actors[a.ID] = withLastUse(a)
	}
}

// Apply folds one authority event into the view.
// Notifications patch the last snapshot until the next ActorState replaces it.
func (p *Projection) Apply(ev event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.Kind == event.KindActorState {
		if snap, ok := ev.Payload.(model.ActorSnapshot); ok {
			p.actors[snap.ID] = withLastUse(snap)
		}
		return
	}
	if ev.Kind == event.KindDespawned {
		delete(p.actors, ev.ActorID)
		return
	}

	a, ok := p.actors[ev.ActorID]
	if !ok {
		return
	}

	switch pl := ev.Payload.(type) {
	case event.HealthChanged:
		a.Health, a.MaxHealth = pl.Current, pl.Max
		if pl.Current <= 0 {
			a.Alive = false
		}
	case event.ManaChanged:
		a.Mana, a.MaxMana = pl.Current, pl.Max
	case event.CooldownChanged:
		a.SkillLastUse = maps.Clone(a.SkillLastUse)
		a.SkillLastUse[pl.SkillID] = pl.LastUse
		if pl.Global {
			a.GlobalLastUse = pl.LastUse
		}
	case event.ActionChanged:
		var st model.ActionState
		if err := st.UnmarshalText([]byte(pl.To)); err == nil {
			a.Action = st
		}
	case event.EffectChanged:
		a.Stunned, a.Silenced, a.Speed = pl.Stunned, pl.Silenced, pl.Speed
	case event.Died:
		a.Alive = false
		a.Health = 0
		a.Action = model.ActionIdle
	case event.Respawned:
		a.Alive = true
		a.Health, a.Mana = a.MaxHealth, a.MaxMana
		a.Stunned, a.Silenced = false, false
		a.Action = model.ActionIdle
		a.Position = model.NewLocation(pl.X, pl.Y, pl.Z, 0)
	default:
		return
	}
	p.actors[ev.ActorID] = a
}

// Snapshot returns the projected state of an actor.
func (p *Projection) Snapshot(actorID uint32) (model.ActorSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.actors[actorID]
	return a, ok
}

// IDs returns the known actor ids in ascending order.
func (p *Projection) IDs() []uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.actors))
}

// RemainingCooldown returns how long until skillID is usable again.
func (p *Projection) RemainingCooldown(actorID uint32, skillID int32, now time.Time) time.Duration {
	a, ok := p.Snapshot(actorID)
	if !ok {
		return 0
	}
	sk, ok := p.skills.Get(skillID)
	if !ok {
		return 0
	}
	return cooldown.Remaining(sk.Definition().Cooldown, a.SkillLastUse[skillID], now)
}

// CooldownProgressNormalized returns 0 right after use, 1 when ready.
func (p *Projection) CooldownProgressNormalized(actorID uint32, skillID int32, now time.Time) float64 {
	a, ok := p.Snapshot(actorID)
	if !ok {
		return 1
	}
	sk, ok := p.skills.Get(skillID)
	if !ok {
		return 1
	}
	return cooldown.Progress(sk.Definition().Cooldown, a.SkillLastUse[skillID], now)
}

// IsStunned reports the projected stun state.
func (p *Projection) IsStunned(actorID uint32) bool {
	a, _ := p.Snapshot(actorID)
	return a.Stunned
}

// IsSilenced reports the projected silence state.
func (p *Projection) IsSilenced(actorID uint32) bool {
	a, _ := p.Snapshot(actorID)
	return a.Silenced
}

// Health returns current and max health.
func (p *Projection) Health(actorID uint32) (current, maxHP int32) {
	a, _ := p.Snapshot(actorID)
	return a.Health, a.MaxHealth
}

// CurrentAction returns the projected action state.
func (p *Projection) CurrentAction(actorID uint32) model.ActionState {
	a, _ := p.Snapshot(actorID)
	return a.Action
}

// CanCast runs the skill's client-side validation for the bound actor.
// An actor target is checked against its last known position.
func (p *Projection) CanCast(now time.Time, skillID int32, target skill.Target) error {
	sk, ok := p.skills.Get(skillID)
	if !ok {
		return fmt.Errorf("skill %d: %w", skillID, skill.ErrNotInKit)
	}

	self, ok := p.Snapshot(p.self)
	if !ok {
		return fmt.Errorf("actor %d not projected: %w", p.self, skill.ErrDead)
	}

	view := skill.ClientView{Now: now, Caster: self}
	switch {
	case target.Point != nil:
		loc := *target.Point
		view.TargetPosition = &loc
	case target.ActorID != 0:
		t, ok := p.Snapshot(target.ActorID)
		if !ok || !t.Alive {
			return fmt.Errorf("target %d: %w", target.ActorID, skill.ErrInvalidTarget)
		}
		loc := t.Position
		view.TargetPosition = &loc
	}
	return sk.ValidateClientSide(view, target)
}

// NearestHostile returns the closest living actor hostile to the bound actor.
func (p *Projection) NearestHostile() (model.ActorSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	self, ok := p.actors[p.self]
	if !ok {
		return model.ActorSnapshot{}, false
	}

	var (
		best  model.ActorSnapshot
		bestD int64
		found bool
	)
	for _, id := range slices.Sorted(maps.Keys(p.actors)) {
		a := p.actors[id]
		if id == p.self || !a.Alive || !self.Team.IsHostileTo(a.Team) {
			continue
		}
		d := self.Position.DistanceSquared(a.Position)
		if !found || d < bestD {
			best, bestD, found = a, d, true
		}
	}
	return best, found
}

func withLastUse(a model.ActorSnapshot) model.ActorSnapshot {
	if a.SkillLastUse == nil {
		a.SkillLastUse = make(map[int32]time.Time)
	}
	return a
}
