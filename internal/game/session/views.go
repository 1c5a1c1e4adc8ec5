package session

import (
	"time"

	"github.com/udisondev/arena/internal/game/cooldown"
	"github.com/udisondev/arena/internal/model"
)

// The accessors below read the snapshots published at the end of the last
// tick and are safe for concurrent use.

// Snapshot returns the last published snapshot of an actor.
func (s *Session) Snapshot(actorID uint32) (model.ActorSnapshot, bool) {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	snap, ok := s.views[actorID]
	return snap, ok
}

// Snapshots returns every published snapshot.
func (s *Session) Snapshots() []model.ActorSnapshot {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()

	out := make([]model.ActorSnapshot, 0, len(s.views))
	for _, snap := range s.views {
		out = append(out, snap)
	}
	return out
}

// RemainingCooldown returns how long until skillID is usable again.
func (s *Session) RemainingCooldown(actorID uint32, skillID int32, now time.Time) time.Duration {
	snap, ok := s.Snapshot(actorID)
	if !ok {
		return 0
	}
	sk, ok := s.registry.Get(skillID)
	if !ok {
		return 0
	}
	return cooldown.Remaining(sk.Definition().Cooldown, snap.SkillLastUse[skillID], now)
}

// CooldownProgressNormalized returns 0 right after use, 1 when ready.
func (s *Session) CooldownProgressNormalized(actorID uint32, skillID int32, now time.Time) float64 {
	snap, ok := s.Snapshot(actorID)
	if !ok {
		return 1
	}
	sk, ok := s.registry.Get(skillID)
	if !ok {
		return 1
	}
	return cooldown.Progress(sk.Definition().Cooldown, snap.SkillLastUse[skillID], now)
}

// IsStunned reports the published stun state.
func (s *Session) IsStunned(actorID uint32) bool {
	snap, _ := s.Snapshot(actorID)
	return snap.Stunned
}

// IsSilenced reports the published silence state.
func (s *Session) IsSilenced(actorID uint32) bool {
	snap, _ := s.Snapshot(actorID)
	return snap.Silenced
}

// Health returns current and max health.
func (s *Session) Health(actorID uint32) (current, maxHP int32) {
	snap, _ := s.Snapshot(actorID)
	return snap.Health, snap.MaxHealth
}

// CurrentAction returns the published action state.
func (s *Session) CurrentAction(actorID uint32) model.ActionState {
	snap, _ := s.Snapshot(actorID)
	return snap.Action
}
