package cooldown

import (
	"maps"
	"time"
)

// State is a copy of one actor's skill runtime state.
// Zero time means "never used".
type State struct {
	Skills map[int32]time.Time `json:"skills"`
	Global time.Time           `json:"global"`
}

// entry: last-use timestamps одного актёра.
type entry struct {
	skills map[int32]time.Time
	global time.Time
}

// Tracker хранит lastUse[actor][skill] и lastGlobalUse[actor].
//
// Not thread-safe: owned by the authority tick, observers read State copies.
type Tracker struct {
	global time.Duration
	actors map[uint32]*entry
}

// NewTracker creates a tracker with the given global cooldown window.
func NewTracker(global time.Duration) *Tracker {
	return &Tracker{
		global: max(global, 0),
		actors: make(map[uint32]*entry),
	}
}

// GlobalCooldown returns the shared window between two casts.
func (t *Tracker) GlobalCooldown() time.Duration {
	return t.global
}

// Assign creates runtime state for a freshly assigned kit.
// Already known actors keep their timestamps.
func (t *Tracker) Assign(actorID uint32, skills []int32) {
	e, ok := t.actors[actorID]
	if !ok {
		e = &entry{skills: make(map[int32]time.Time, len(skills))}
		t.actors[actorID] = e
	}
	for _, id := range skills {
		if _, known := e.skills[id]; !known {
			e.skills[id] = time.Time{}
		}
	}
}

// Stamp records a resolved cast. The global timestamp is stamped only
// for skills that take part in the global cooldown.
func (t *Tracker) Stamp(actorID uint32, skillID int32, now time.Time, global bool) {
	e, ok := t.actors[actorID]
	if !ok {
		e = &entry{skills: make(map[int32]time.Time)}
		t.actors[actorID] = e
	}
	e.skills[skillID] = now
	if global {
		e.global = now
	}
}

// LastUse returns the last-use timestamp of a skill.
func (t *Tracker) LastUse(actorID uint32, skillID int32) time.Time {
	if e, ok := t.actors[actorID]; ok {
		return e.skills[skillID]
	}
	return time.Time{}
}

// Remaining returns the per-skill cooldown left at now.
func (t *Tracker) Remaining(actorID uint32, skillID int32, cd time.Duration, now time.Time) time.Duration {
	return Remaining(cd, t.LastUse(actorID, skillID), now)
}

// GlobalRemaining returns the global cooldown left at now.
func (t *Tracker) GlobalRemaining(actorID uint32, now time.Time) time.Duration {
	e, ok := t.actors[actorID]
	if !ok {
		return 0
	}
	return Remaining(t.global, e.global, now)
}

// Progress returns the normalized per-skill cooldown progress at now.
func (t *Tracker) Progress(actorID uint32, skillID int32, cd time.Duration, now time.Time) float64 {
	return Progress(cd, t.LastUse(actorID, skillID), now)
}

// Snapshot copies the actor's runtime state.
func (t *Tracker) Snapshot(actorID uint32) State {
	e, ok := t.actors[actorID]
	if !ok {
		return State{Skills: map[int32]time.Time{}}
	}
	return State{Skills: maps.Clone(e.skills), Global: e.global}
}

// Restore replaces the actor's runtime state, e.g. with persisted timestamps.
func (t *Tracker) Restore(actorID uint32, s State) {
	skills := maps.Clone(s.Skills)
	if skills == nil {
		skills = make(map[int32]time.Time)
	}
	t.actors[actorID] = &entry{skills: skills, global: s.Global}
}

// Forget drops the actor's runtime state on despawn.
func (t *Tracker) Forget(actorID uint32) {
	delete(t.actors, actorID)
}

// Remaining computes max(0, cd - (now - last)).
// A zero last-use means the skill was never used.
func Remaining(cd time.Duration, last, now time.Time) time.Duration {
	if cd <= 0 || last.IsZero() {
		return 0
	}
	left := cd - now.Sub(last)
	if left < 0 {
		return 0
	}
	if left > cd {
		// last-use in the future (clock skew on replicated copies)
		return cd
	}
	return left
}

// Progress computes 1 - remaining/cd clamped to [0,1].
// Skills without a cooldown are always ready.
func Progress(cd time.Duration, last, now time.Time) float64 {
	if cd <= 0 {
		return 1
	}
	p := 1 - float64(Remaining(cd, last, now))/float64(cd)
	return min(max(p, 0), 1)
}
