package session

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
)

// Run ticks the session at the configured rate until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	interval := s.cfg.TickInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("arena session started", "tick", interval, "sweep", s.cfg.SweepInterval)

	for {
		select {
		case <-ctx.Done():
			s.SaveAll()
			slog.Info("arena session stopping", "actors", s.world.Count())
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

// Tick runs one authority step:
//  1. drain queued requests in arrival order;
//  2. advance movement;
//  3. poll every action machine;
//  4. sweep control effects (poison ticks) every SweepInterval;
//  5. revive actors whose respawn is due;
//  6. publish one ActorState snapshot per mutated actor, then every staged event.
func (s *Session) Tick(now time.Time) {
	var dt time.Duration
	if !s.lastTick.IsZero() {
		dt = now.Sub(s.lastTick)
	}
	s.lastTick = now
	if s.lastSweep.IsZero() {
		s.lastSweep = now
	}

	for _, req := range s.drainInbox() {
		s.dispatch(now, req)
	}

	ids := slices.Sorted(maps.Keys(s.machines))
	if dt > 0 {
		for _, id := range ids {
			if nav := s.navs[id]; nav != nil && nav.IsMoving() {
				nav.Advance(dt)
				s.outbox.Touch(id)
			}
		}
	}
	for _, id := range ids {
		if m := s.machines[id]; m != nil {
			m.Tick(now)
		}
	}

	if now.Sub(s.lastSweep) >= s.cfg.SweepInterval {
		s.lastSweep = now
		s.sweep(now)
	}

	for _, task := range s.respawns.Due(now) {
		s.respawn(now, task.ActorID)
	}

	s.publish(now)
}

func (s *Session) dispatch(now time.Time, req model.ActionRequest) {
	m, ok := s.machines[req.ActorID]
	if !ok {
		slog.Debug("request for unknown actor dropped", "actor", req.ActorID, "kind", req.Kind)
		return
	}
	if err := m.Request(now, req); err != nil {
		slog.Debug("request rejected",
			"actor", req.ActorID,
			"kind", req.Kind,
			"skill", req.SkillID,
			"target", req.TargetActorID,
			"error", err)
	}
}

// sweep expires control effects and applies poison ticks.
func (s *Session) sweep(now time.Time) {
	for _, tick := range s.effects.Sweep(now) {
		victim, ok := s.world.Actor(tick.ActorID)
		if !ok || victim.IsDead() {
			continue
		}
		src := combat.Source{SkillID: tick.SkillID}
		if caster, ok := s.world.Actor(tick.SourceID); ok {
			src.Actor = caster
		}
		if _, err := s.resolver.DamageNonLethal(now, src, victim, tick.Damage); err != nil {
			slog.Warn("poison tick failed", "actor", tick.ActorID, "error", err)
		}
	}
}

// respawn revives a dead actor at its team spawn point.
func (s *Session) respawn(now time.Time, id uint32) {
	a, ok := s.world.Actor(id)
	if !ok || a.IsAlive() {
		return
	}

	s.world.Relocate(a, s.points.SpawnPoint(a.Team()))
	loc := a.Location()
	a.Revive(loc)
	s.effects.ClearAll(now, id)

	slog.Info("actor respawned", "actor", id, "name", a.Name(), "x", loc.X, "y", loc.Y)

	s.outbox.Emit(event.New(event.KindRespawned, id, now, event.Respawned{X: loc.X, Y: loc.Y, Z: loc.Z}))
	s.outbox.Emit(event.New(event.KindHealthChanged, id, now, event.HealthChanged{
		Current: a.CurrentHP(),
		Max:     a.MaxHP(),
		Delta:   a.CurrentHP(),
	}))
	s.outbox.Emit(event.New(event.KindManaChanged, id, now, event.ManaChanged{
		Current: a.CurrentMP(),
		Max:     a.MaxMP(),
	}))
}

// publish coalesces this tick's mutations into one snapshot per actor
// and hands the staged events to the bus.
func (s *Session) publish(now time.Time) {
	for _, id := range s.outbox.Dirty() {
		a, ok := s.world.Actor(id)
		if !ok {
			continue
		}
		snap := s.publishView(a)
		s.outbox.Emit(event.New(event.KindActorState, id, now, snap))
	}
	if s.bus != nil {
		s.outbox.Flush(s.bus)
	} else {
		s.outbox.Flush(discard{})
	}
}

// publishView builds the replicated snapshot and stores it for the accessors.
func (s *Session) publishView(a *model.Actor) model.ActorSnapshot {
	snap := a.Snapshot()
	snap.Stunned = s.effects.IsStunned(a.ID())
	snap.Silenced = s.effects.IsSilenced(a.ID())

	cd := s.cooldowns.Snapshot(a.ID())
	snap.SkillLastUse = cd.Skills
	snap.GlobalLastUse = cd.Global
	snap.GlobalCooldown = s.cooldowns.GlobalCooldown()

	s.viewMu.Lock()
	s.views[a.ID()] = snap
	s.viewMu.Unlock()
	return snap
}

// onEffectChanged applies the side effects of a control effect change.
func (s *Session) onEffectChanged(now time.Time, actorID uint32, t effect.Type) {
	a, ok := s.world.Actor(actorID)
	if !ok {
		return
	}

	switch t {
	case effect.Stun:
		if s.effects.IsStunned(actorID) {
			if m := s.machines[actorID]; m != nil {
				m.Interrupt(now, skill.ErrStunned)
			}
		}
	case effect.Slow:
		// exact baseline once no slow remains
		a.SetSpeed(s.effects.EffectiveSpeed(actorID, a.BaseSpeed()))
	}

	s.outbox.Emit(event.New(event.KindEffectChanged, actorID, now, event.EffectChanged{
		Type:     t.String(),
		Active:   s.effects.Has(actorID, t),
		Stunned:  s.effects.IsStunned(actorID),
		Silenced: s.effects.IsSilenced(actorID),
		Speed:    a.Speed(),
	}))
}

// onDeath stops the victim and records the kill.
func (s *Session) onDeath(now time.Time, victim, killer *model.Actor, skillID int32) {
	if m := s.machines[victim.ID()]; m != nil {
		m.Interrupt(now, skill.ErrDead)
	}
	s.effects.ClearAll(now, victim.ID())

	if s.recorder != nil {
		rec := model.DeathRecord{VictimID: victim.ID(), SkillID: skillID, At: now}
		if killer != nil {
			rec.KillerID = killer.ID()
		}
		s.recorder.RecordDeath(rec)
	}
}

type discard struct{}

func (discard) Emit(event.Event) {}
