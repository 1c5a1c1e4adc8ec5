package combat

import (
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/model"
)

var (
	// ErrNoTarget is returned when the target actor is missing.
	ErrNoTarget = errors.New("no target")
	// ErrTargetDead is returned for damage or heal against a dead actor.
	ErrTargetDead = errors.New("target is dead")
)

// Respawner schedules a dead actor's return.
type Respawner interface {
	ScheduleRespawn(actorID uint32, at time.Time)
}

// Source identifies who caused a health change. Actor may be nil (environment).
type Source struct {
	Actor   *model.Actor
	SkillID int32
}

func (s Source) actorID() uint32 {
	if s.Actor == nil {
		return 0
	}
	return s.Actor.ID()
}

// Hit содержит результат одного применения урона/лечения.
type Hit struct {
	SourceID uint32
	TargetID uint32
	SkillID  int32
	Amount   int32 // applied health change magnitude, after clamping
	Crit     bool
	Heal     bool
	Killed   bool
}

// Config holds the resolver constants.
type Config struct {
	CritMultiplier float64
	RespawnDelay   time.Duration
}

// Resolver applies damage and healing and handles death.
// Callbacks are injected to avoid import cycles with the session.
//
// Not thread-safe: owned by the authority tick.
type Resolver struct {
	cfg       Config
	respawner Respawner
	emitter   event.Emitter

	// roll returns a uniform value in [0,100).
	roll func() float64

	// deathFunc is called once per death, after the Died event was staged.
	deathFunc func(now time.Time, victim, killer *model.Actor, skillID int32)

	// hitObserver: callback для наблюдения за результатами (nil в production).
	hitObserver func(Hit)
}

// NewResolver creates a resolver. respawner may be nil (no respawn).
func NewResolver(cfg Config, respawner Respawner, emitter event.Emitter) *Resolver {
	if cfg.CritMultiplier < 1 {
		cfg.CritMultiplier = 1
	}
	return &Resolver{
		cfg:       cfg,
		respawner: respawner,
		emitter:   emitter,
		roll:      func() float64 { return rand.Float64() * 100 },
	}
}

// SetRoll replaces the crit roll source (tests).
func (r *Resolver) SetRoll(fn func() float64) {
	r.roll = fn
}

// SetDeathFunc sets the callback for death handling (interrupt, effects, death log).
func (r *Resolver) SetDeathFunc(fn func(now time.Time, victim, killer *model.Actor, skillID int32)) {
	r.deathFunc = fn
}

// SetHitObserver sets callback for observing hit results (for tests).
func (r *Resolver) SetHitObserver(fn func(Hit)) {
	r.hitObserver = fn
}

// RollCrit reports whether a roll in [0,100) lands at or under chance.
// A chance of 0 never crits.
func (r *Resolver) RollCrit(chance float64) bool {
	if chance <= 0 {
		return false
	}
	return r.roll() <= chance
}

// BaseAmount computes power + scaling × stat for the skill's damage type.
func BaseAmount(def *data.SkillDefinition, caster *model.Actor) int32 {
	var stat int32
	if caster != nil {
		switch def.DamageType {
		case data.DamagePhysical:
			stat = caster.AttackPower()
		case data.DamageMagical:
			stat = caster.SpellPower()
		}
	}
	amount := float64(def.Power) + def.Scaling*float64(stat)
	return int32(math.Max(0, math.Round(amount)))
}

// Damage applies amount to target, rolling a crit with critChance.
// Health is clamped to [0, max]; reaching 0 kills the target once.
func (r *Resolver) Damage(now time.Time, src Source, target *model.Actor, amount int32, critChance float64) (Hit, error) {
	if target == nil {
		return Hit{}, ErrNoTarget
	}
	if target.IsDead() {
		return Hit{}, ErrTargetDead
	}

	hit := Hit{SourceID: src.actorID(), TargetID: target.ID(), SkillID: src.SkillID}
	if r.RollCrit(critChance) {
		hit.Crit = true
		amount = int32(math.Round(float64(amount) * r.cfg.CritMultiplier))
	}
	amount = max(amount, 0)

	before := target.CurrentHP()
	target.SetCurrentHP(before - amount)
	hit.Amount = before - target.CurrentHP()

	r.emitHealth(now, target, -hit.Amount, hit)

	if target.CurrentHP() == 0 {
		hit.Killed = r.Kill(now, target, src.Actor, src.SkillID)
	}

	r.observe(hit)
	return hit, nil
}

// DamageNonLethal applies amount but never drops health below 1 (poison ticks).
func (r *Resolver) DamageNonLethal(now time.Time, src Source, target *model.Actor, amount int32) (Hit, error) {
	if target == nil {
		return Hit{}, ErrNoTarget
	}
	if target.IsDead() {
		return Hit{}, ErrTargetDead
	}

	hit := Hit{SourceID: src.actorID(), TargetID: target.ID(), SkillID: src.SkillID}
	before := target.CurrentHP()
	amount = min(max(amount, 0), before-1)
	if amount > 0 {
		target.SetCurrentHP(before - amount)
		hit.Amount = amount
		r.emitHealth(now, target, -amount, hit)
	}

	r.observe(hit)
	return hit, nil
}

// Heal restores amount health to a living target, clamped at max.
func (r *Resolver) Heal(now time.Time, src Source, target *model.Actor, amount int32) (Hit, error) {
	if target == nil {
		return Hit{}, ErrNoTarget
	}
	if target.IsDead() {
		return Hit{}, ErrTargetDead
	}

	hit := Hit{SourceID: src.actorID(), TargetID: target.ID(), SkillID: src.SkillID, Heal: true}
	before := target.CurrentHP()
	target.SetCurrentHP(before + max(amount, 0))
	hit.Amount = target.CurrentHP() - before

	if hit.Amount > 0 {
		r.emitHealth(now, target, hit.Amount, hit)
	}
	r.observe(hit)
	return hit, nil
}

// Kill marks victim dead and schedules its respawn.
// Returns false if victim was already dead (no second Died).
func (r *Resolver) Kill(now time.Time, victim, killer *model.Actor, skillID int32) bool {
	if !victim.MarkDead() {
		return false
	}

	respawnAt := now.Add(r.cfg.RespawnDelay)
	if r.respawner != nil {
		r.respawner.ScheduleRespawn(victim.ID(), respawnAt)
	}

	var killerID uint32
	if killer != nil {
		killerID = killer.ID()
	}

	slog.Info("actor died",
		"victim", victim.Name(),
		"victimID", victim.ID(),
		"killer", killerID,
		"skill", skillID,
		"respawnAt", respawnAt)

	r.emit(event.New(event.KindDied, victim.ID(), now, event.Died{
		KillerID:  killerID,
		SkillID:   skillID,
		RespawnAt: respawnAt,
	}))

	if r.deathFunc != nil {
		r.deathFunc(now, victim, killer, skillID)
	}
	return true
}

func (r *Resolver) emitHealth(now time.Time, target *model.Actor, delta int32, hit Hit) {
	r.emit(event.New(event.KindHealthChanged, target.ID(), now, event.HealthChanged{
		Current:  target.CurrentHP(),
		Max:      target.MaxHP(),
		Delta:    delta,
		SourceID: hit.SourceID,
		SkillID:  hit.SkillID,
		Critical: hit.Crit,
	}))
}

func (r *Resolver) emit(ev event.Event) {
	if r.emitter != nil {
		r.emitter.Emit(ev)
	}
}

func (r *Resolver) observe(hit Hit) {
	if r.hitObserver != nil {
		r.hitObserver(hit)
	}
}
