package skill

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/game/cooldown"
	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/model"
)

// Use tells validation how a skill is being invoked.
type Use uint8

const (
	// UseCast is an explicit skill cast; Silence blocks it.
	UseCast Use = iota
	// UseBasicAttack is the attack loop invoking the kit's basic attack.
	UseBasicAttack
)

// CastConfig holds the authority validation constants.
type CastConfig struct {
	// RangeTolerance absorbs position replication drift.
	RangeTolerance int32
	// RangeWarnThreshold is the drift above which an accepted cast is logged.
	RangeWarnThreshold int32
}

// Resolved is a target resolved against the authoritative world.
type Resolved struct {
	Actor *model.Actor // SingleTarget target, the caster for self buffs
	Point model.Location
}

// PendingCast is a cast that passed validation and spent its mana.
// It resolves exactly once: committed, or aborted.
type PendingCast struct {
	Skill     Skill
	CasterID  uint32
	Use       Use
	Target    Target
	BegunAt   time.Time
	ResolveAt time.Time

	resolved  bool
	committed bool
}

// Ready reports whether the cast time has elapsed at now.
func (p *PendingCast) Ready(now time.Time) bool {
	return !now.Before(p.ResolveAt)
}

// Resolved reports whether the cast was committed or aborted.
func (p *PendingCast) Resolved() bool { return p.resolved }

// Committed reports whether the skill effect was applied.
func (p *PendingCast) Committed() bool { return p.committed }

// CastManager handles skill casting on the authority: validation, mana,
// deferred commit and cooldown stamping.
//
// Not thread-safe: owned by the authority tick.
type CastManager struct {
	cfg       CastConfig
	registry  *Registry
	cooldowns *cooldown.Tracker
	effects   *effect.Manager
	combat    *combat.Resolver
	world     Finder
	emitter   event.Emitter
}

// NewCastManager creates a new CastManager.
func NewCastManager(
	cfg CastConfig,
	registry *Registry,
	cooldowns *cooldown.Tracker,
	effects *effect.Manager,
	resolver *combat.Resolver,
	world Finder,
	emitter event.Emitter,
) *CastManager {
	return &CastManager{
		cfg:       cfg,
		registry:  registry,
		cooldowns: cooldowns,
		effects:   effects,
		combat:    resolver,
		world:     world,
		emitter:   emitter,
	}
}

// Registry returns the skill registry.
func (cm *CastManager) Registry() *Registry {
	return cm.registry
}

// CheckState runs validation steps 1-2: alive, not stunned, not silenced for casts.
func (cm *CastManager) CheckState(caster *model.Actor, use Use) error {
	if caster.IsDead() {
		return ErrDead
	}
	if cm.effects.IsStunned(caster.ID()) {
		return ErrStunned
	}
	if use == UseCast && cm.effects.IsSilenced(caster.ID()) {
		return ErrSilenced
	}
	return nil
}

// Prevalidate runs validation steps 1-6 and resolves the target.
// The action machine calls it when a request arrives, before approaching.
func (cm *CastManager) Prevalidate(now time.Time, caster *model.Actor, skillID int32, use Use, tgt Target) (Skill, Resolved, error) {
	if err := cm.CheckState(caster, use); err != nil {
		return nil, Resolved{}, err
	}

	if !caster.Kit().Has(skillID) {
		return nil, Resolved{}, fmt.Errorf("skill %d: %w", skillID, ErrNotInKit)
	}
	s, ok := cm.registry.Get(skillID)
	if !ok {
		return nil, Resolved{}, fmt.Errorf("skill %d: %w", skillID, ErrUnknownSkill)
	}
	def := s.Definition()

	if left := cm.cooldowns.Remaining(caster.ID(), skillID, def.Cooldown, now); left > 0 {
		return nil, Resolved{}, fmt.Errorf("skill %d, %s left: %w", skillID, left, ErrOnCooldown)
	}
	if !def.IgnoreGlobalCooldown {
		if left := cm.cooldowns.GlobalRemaining(caster.ID(), now); left > 0 {
			return nil, Resolved{}, fmt.Errorf("skill %d, %s left: %w", skillID, left, ErrGlobalCooldown)
		}
	}
	if caster.CurrentMP() < def.ManaCost {
		return nil, Resolved{}, fmt.Errorf("need %d, have %d: %w", def.ManaCost, caster.CurrentMP(), ErrNotEnoughMana)
	}

	res, err := cm.ResolveTarget(caster, def, tgt)
	if err != nil {
		return nil, Resolved{}, err
	}
	return s, res, nil
}

// Validate runs the full authority validation (steps 1-7).
func (cm *CastManager) Validate(now time.Time, caster *model.Actor, skillID int32, use Use, tgt Target) (Skill, Resolved, error) {
	s, res, err := cm.Prevalidate(now, caster, skillID, use, tgt)
	if err != nil {
		return nil, Resolved{}, err
	}

	def := s.Definition()
	if !def.Targeting.NeedsRange() {
		return s, res, nil
	}

	dist := caster.Location().Distance(res.Point)
	if dist > float64(def.Range+cm.cfg.RangeTolerance) {
		return nil, Resolved{}, fmt.Errorf("skill %d, distance %.0f > %d+%d: %w",
			skillID, dist, def.Range, cm.cfg.RangeTolerance, ErrOutOfRange)
	}
	if dist > float64(def.Range+cm.cfg.RangeWarnThreshold) {
		slog.Warn("cast accepted beyond range",
			"caster", caster.ID(),
			"skill", skillID,
			"distance", dist,
			"range", def.Range,
			"tolerance", cm.cfg.RangeTolerance)
	}
	return s, res, nil
}

// ResolveTarget finds the target actor and point a request aims at.
func (cm *CastManager) ResolveTarget(caster *model.Actor, def *data.SkillDefinition, tgt Target) (Resolved, error) {
	switch def.Targeting {
	case data.TargetSelfBuff:
		return Resolved{Actor: caster, Point: caster.Location()}, nil

	case data.TargetSingleTarget:
		if tgt.ActorID == 0 || tgt.ActorID == caster.ID() {
			if def.Hostility == data.HostileAllies {
				return Resolved{Actor: caster, Point: caster.Location()}, nil
			}
			return Resolved{}, fmt.Errorf("skill %d needs a target: %w", def.ID, ErrInvalidTarget)
		}
		a, ok := cm.world.Actor(tgt.ActorID)
		if !ok || a.IsDead() {
			return Resolved{}, fmt.Errorf("actor %d: %w", tgt.ActorID, ErrInvalidTarget)
		}
		if !combat.Matches(caster, a, def.Hostility) {
			return Resolved{}, fmt.Errorf("actor %d is not %s: %w", tgt.ActorID, def.Hostility, ErrInvalidTarget)
		}
		return Resolved{Actor: a, Point: a.Location()}, nil

	default:
		if tgt.Point != nil {
			return Resolved{Point: *tgt.Point}, nil
		}
		if tgt.ActorID != 0 {
			if a, ok := cm.world.Actor(tgt.ActorID); ok && a.IsAlive() {
				return Resolved{Point: a.Location()}, nil
			}
		}
		return Resolved{}, fmt.Errorf("skill %d needs a point: %w", def.ID, ErrInvalidTarget)
	}
}

// Begin validates the cast and spends its mana. Instant skills are committed
// right away; the returned cast is then already resolved.
func (cm *CastManager) Begin(now time.Time, caster *model.Actor, skillID int32, use Use, tgt Target) (*PendingCast, error) {
	s, _, err := cm.Validate(now, caster, skillID, use, tgt)
	if err != nil {
		return nil, err
	}
	def := s.Definition()

	if def.ManaCost > 0 {
		caster.SetCurrentMP(caster.CurrentMP() - def.ManaCost)
		cm.emit(event.New(event.KindManaChanged, caster.ID(), now, event.ManaChanged{
			Current: caster.CurrentMP(),
			Max:     caster.MaxMP(),
		}))
	}

	p := &PendingCast{
		Skill:     s,
		CasterID:  caster.ID(),
		Use:       use,
		Target:    tgt,
		BegunAt:   now,
		ResolveAt: now.Add(def.CastTime),
	}

	slog.Debug("cast started",
		"caster", caster.ID(),
		"skill", def.Name,
		"skillID", def.ID,
		"target", tgt.ActorID,
		"castTime", def.CastTime)

	if def.IsInstant() {
		return p, cm.Commit(now, caster, p)
	}
	return p, nil
}

// Commit re-validates the caster and target and applies the skill effect.
// If the re-validation fails the cast is aborted with no effect applied.
// Cooldowns are stamped either way: the cast reached its commit point.
func (cm *CastManager) Commit(now time.Time, caster *model.Actor, p *PendingCast) error {
	if p.resolved {
		return ErrCastResolved
	}
	def := p.Skill.Definition()

	if err := cm.CheckState(caster, p.Use); err != nil {
		cm.abort(now, caster, p, err, true)
		return err
	}
	res, err := cm.ResolveTarget(caster, def, p.Target)
	if err != nil {
		cm.abort(now, caster, p, err, true)
		return err
	}

	ctx := &ExecContext{
		Now:     now,
		Caster:  caster,
		Target:  res.Actor,
		Point:   res.Point,
		World:   cm.world,
		Combat:  cm.combat,
		Effects: cm.effects,
	}
	execErr := p.Skill.ExecuteOnAuthority(ctx)
	if execErr != nil {
		slog.Warn("skill effect partially failed",
			"caster", caster.ID(),
			"skill", def.ID,
			"error", execErr)
	}

	p.resolved = true
	p.committed = true
	cm.stamp(now, caster, def)
	cm.emit(event.New(event.KindCastResolved, caster.ID(), now, event.CastResolved{
		SkillID:   def.ID,
		Committed: true,
	}))

	slog.Debug("cast committed", "caster", caster.ID(), "skillID", def.ID)
	return execErr
}

// Abort cancels a pending cast before its commit point: a newer request,
// Stop, stun, silence or death. Nothing is applied and no cooldown is
// stamped. Spent mana is not refunded.
func (cm *CastManager) Abort(now time.Time, caster *model.Actor, p *PendingCast, reason error) {
	cm.abort(now, caster, p, reason, false)
}

func (cm *CastManager) abort(now time.Time, caster *model.Actor, p *PendingCast, reason error, stamp bool) {
	if p.resolved {
		return
	}
	p.resolved = true
	def := p.Skill.Definition()

	if stamp {
		cm.stamp(now, caster, def)
	}

	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	cm.emit(event.New(event.KindCastResolved, caster.ID(), now, event.CastResolved{
		SkillID: def.ID,
		Reason:  msg,
	}))

	slog.Debug("cast aborted",
		"caster", caster.ID(),
		"skillID", def.ID,
		"reason", msg,
		"stamped", stamp)
}

func (cm *CastManager) stamp(now time.Time, caster *model.Actor, def *data.SkillDefinition) {
	global := !def.IgnoreGlobalCooldown
	cm.cooldowns.Stamp(caster.ID(), def.ID, now, global)
	cm.emit(event.New(event.KindCooldownChanged, caster.ID(), now, event.CooldownChanged{
		SkillID:  def.ID,
		LastUse:  now,
		Cooldown: def.Cooldown,
		Global:   global,
	}))
}

func (cm *CastManager) emit(ev event.Event) {
	if cm.emitter != nil {
		cm.emitter.Emit(ev)
	}
}
