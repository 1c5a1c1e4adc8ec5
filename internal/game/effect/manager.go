package effect

import (
	"log/slog"
	"maps"
	"math"
	"slices"
	"time"
)

// ChangeFunc is called after the set of active effects of one type changed
// on an actor (applied, replaced, expired or cleared). The callee re-reads the
// manager to apply or revert side effects.
type ChangeFunc func(now time.Time, actorID uint32, t Type)

// actorEffects: активные эффекты одного актёра.
// Stun, Silence and Poison hold one entry each; Slow holds one entry per source.
type actorEffects struct {
	single map[Type]ControlEffect
	slows  []ControlEffect
}

func (a *actorEffects) empty() bool {
	return len(a.single) == 0 && len(a.slows) == 0
}

// topWeight returns the weight an incoming effect of type t has to match.
func (a *actorEffects) topWeight(now time.Time, t Type) (int32, bool) {
	if t != Slow {
		e, ok := a.single[t]
		if !ok || e.Expired(now) {
			return 0, false
		}
		return e.Weight, true
	}

	var (
		top   int32
		found bool
	)
	for _, e := range a.slows {
		if e.Expired(now) {
			continue
		}
		if !found || e.Weight > top {
			top = e.Weight
			found = true
		}
	}
	return top, found
}

// Manager tracks control effects per actor.
//
// Override rule: an incoming effect replaces the active one of the same type
// only if its weight is >= the active weight. Equal weight is accepted.
//
// Not thread-safe: owned by the authority tick.
type Manager struct {
	actors   map[uint32]*actorEffects
	onChange ChangeFunc
}

// NewManager creates an empty manager. onChange may be nil.
func NewManager(onChange ChangeFunc) *Manager {
	return &Manager{
		actors:   make(map[uint32]*actorEffects),
		onChange: onChange,
	}
}

// SetChangeFunc sets the side-effect callback.
func (m *Manager) SetChangeFunc(fn ChangeFunc) {
	m.onChange = fn
}

// Apply adds or replaces an effect on actorID.
// Returns false if the effect was rejected by weight or already expired.
func (m *Manager) Apply(now time.Time, actorID uint32, e ControlEffect) bool {
	if e.Expired(now) {
		return false
	}

	a, ok := m.actors[actorID]
	if !ok {
		a = &actorEffects{single: make(map[Type]ControlEffect, 2)}
		m.actors[actorID] = a
	}

	if top, active := a.topWeight(now, e.Type); active && e.Weight < top {
		slog.Debug("control effect rejected by weight",
			"actor", actorID,
			"type", e.Type,
			"weight", e.Weight,
			"activeWeight", top)
		return false
	}

	if e.Type == Slow {
		idx := slices.IndexFunc(a.slows, e.sameSource)
		if idx >= 0 {
			a.slows[idx] = e
		} else {
			a.slows = append(a.slows, e)
		}
	} else {
		a.single[e.Type] = e
	}

	slog.Debug("control effect applied",
		"actor", actorID,
		"type", e.Type,
		"source", e.SourceID,
		"skill", e.SkillID,
		"until", e.EndTime,
		"magnitude", e.Magnitude)

	m.changed(now, actorID, e.Type)
	return true
}

// Clear removes every effect of type t from actorID.
func (m *Manager) Clear(now time.Time, actorID uint32, t Type) bool {
	a, ok := m.actors[actorID]
	if !ok {
		return false
	}

	removed := false
	if t == Slow {
		removed = len(a.slows) > 0
		a.slows = nil
	} else if _, ok := a.single[t]; ok {
		delete(a.single, t)
		removed = true
	}

	if a.empty() {
		delete(m.actors, actorID)
	}
	if removed {
		m.changed(now, actorID, t)
	}
	return removed
}

// ClearAll removes every effect from actorID (death, respawn).
func (m *Manager) ClearAll(now time.Time, actorID uint32) {
	if _, ok := m.actors[actorID]; !ok {
		return
	}
	for _, t := range Types {
		m.Clear(now, actorID, t)
	}
}

// Forget drops the actor's effects without side-effect callbacks (despawn).
func (m *Manager) Forget(actorID uint32) {
	delete(m.actors, actorID)
}

// Sweep removes expired effects and reports poison damage for the ones still active.
// Side effects of a type are reverted only once no effect of that type remains,
// which the change callback sees by re-reading the manager.
func (m *Manager) Sweep(now time.Time) []PoisonTick {
	var ticks []PoisonTick

	for _, actorID := range slices.Sorted(maps.Keys(m.actors)) {
		a := m.actors[actorID]

		var expired []Type
		for _, t := range Types {
			if t == Slow {
				n := len(a.slows)
				a.slows = slices.DeleteFunc(a.slows, func(e ControlEffect) bool { return e.Expired(now) })
				if len(a.slows) != n {
					expired = append(expired, Slow)
				}
				continue
			}
			if e, ok := a.single[t]; ok && e.Expired(now) {
				delete(a.single, t)
				expired = append(expired, t)
			}
		}

		if p, ok := a.single[Poison]; ok {
			ticks = append(ticks, PoisonTick{
				ActorID:  actorID,
				SourceID: p.SourceID,
				SkillID:  p.SkillID,
				Damage:   int32(math.Round(p.Magnitude)),
			})
		}

		if a.empty() {
			delete(m.actors, actorID)
		}
		for _, t := range expired {
			slog.Debug("control effect expired", "actor", actorID, "type", t)
			m.changed(now, actorID, t)
		}
	}
	return ticks
}

// Has reports whether actorID has an effect of type t.
func (m *Manager) Has(actorID uint32, t Type) bool {
	a, ok := m.actors[actorID]
	if !ok {
		return false
	}
	if t == Slow {
		return len(a.slows) > 0
	}
	_, ok = a.single[t]
	return ok
}

// IsStunned reports whether actorID has an active Stun.
func (m *Manager) IsStunned(actorID uint32) bool {
	return m.Has(actorID, Stun)
}

// IsSilenced reports whether actorID has an active Silence.
func (m *Manager) IsSilenced(actorID uint32) bool {
	return m.Has(actorID, Silence)
}

// SlowMagnitude returns the maximum magnitude across active Slow entries, 0 if none.
func (m *Manager) SlowMagnitude(actorID uint32) float64 {
	a, ok := m.actors[actorID]
	if !ok {
		return 0
	}
	var top float64
	for _, e := range a.slows {
		top = max(top, e.Magnitude)
	}
	return min(top, 1)
}

// PoisonMagnitude returns the per-sweep damage of the active Poison, 0 if none.
func (m *Manager) PoisonMagnitude(actorID uint32) float64 {
	a, ok := m.actors[actorID]
	if !ok {
		return 0
	}
	return a.single[Poison].Magnitude
}

// Active returns a copy of actorID's effects ordered by type, then end time.
func (m *Manager) Active(actorID uint32) []ControlEffect {
	a, ok := m.actors[actorID]
	if !ok {
		return nil
	}
	out := make([]ControlEffect, 0, len(a.single)+len(a.slows))
	for _, e := range a.single {
		out = append(out, e)
	}
	out = append(out, a.slows...)
	slices.SortFunc(out, func(x, y ControlEffect) int {
		if x.Type != y.Type {
			return int(x.Type) - int(y.Type)
		}
		return x.EndTime.Compare(y.EndTime)
	})
	return out
}

// EffectiveSpeed scales baseline by the strongest active Slow.
func (m *Manager) EffectiveSpeed(actorID uint32, baseline float64) float64 {
	mag := m.SlowMagnitude(actorID)
	if mag == 0 {
		return baseline
	}
	return baseline * (1 - mag)
}

func (m *Manager) changed(now time.Time, actorID uint32, t Type) {
	if m.onChange != nil {
		m.onChange(now, actorID, t)
	}
}
