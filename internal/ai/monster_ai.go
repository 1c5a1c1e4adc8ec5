package ai

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
)

// Views reads the published actor snapshots (session.Session).
type Views interface {
	Snapshot(actorID uint32) (model.ActorSnapshot, bool)
	Snapshots() []model.ActorSnapshot
}

// Submitter queues action requests on the authority (session.Session).
type Submitter interface {
	Submit(req model.ActionRequest)
}

// Lookup resolves skill ids (skill.Registry).
type Lookup interface {
	Get(id int32) (skill.Skill, bool)
}

const (
	// spawnImmunityTicks is the number of ticks after spawn/respawn before the monster scans.
	spawnImmunityTicks = 4
	// attackTimeout: a fight without progress is abandoned after this long.
	attackTimeout = 2 * time.Minute
)

// MonsterConfig holds the distances a monster fights within.
type MonsterConfig struct {
	AggroRange int32
	ChaseRange int32
}

// MonsterAI drives one monster through the same request path clients use:
// it never touches the world directly and the authority validates every
// request it submits.
//
// State machine: ACTIVE (scan) → ATTACK (skills when ready, basic attack otherwise).
type MonsterAI struct {
	actorID uint32
	cfg     MonsterConfig
	views   Views
	submit  Submitter
	skills  Lookup

	isRunning atomic.Bool
	intention atomic.Int32

	// globalAggro starts negative (spawn immunity) and counts up every tick.
	// The monster scans for hostiles only once it reaches 0.
	globalAggro atomic.Int32

	target     atomic.Uint32
	lastAttack atomic.Uint32 // target of the last submitted attack request
	deadline   atomic.Int64  // UnixMilli, attack timeout

	// hate per attacker; the most hated living one becomes the target
	mu   sync.Mutex
	hate map[uint32]int64
}

// NewMonsterAI creates a controller for actorID.
func NewMonsterAI(actorID uint32, cfg MonsterConfig, views Views, submit Submitter, skills Lookup) *MonsterAI {
	return &MonsterAI{
		actorID: actorID,
		cfg:     cfg,
		views:   views,
		submit:  submit,
		skills:  skills,
		hate:    make(map[uint32]int64),
	}
}

// Start starts the AI controller with spawn immunity.
func (ai *MonsterAI) Start() {
	ai.isRunning.Store(true)
	ai.globalAggro.Store(-spawnImmunityTicks)
	ai.SetIntention(IntentionActive)

	if IsDebugEnabled() {
		slog.Debug("monster AI started",
			"actor", ai.actorID,
			"aggroRange", ai.cfg.AggroRange,
			"chaseRange", ai.cfg.ChaseRange)
	}
}

// Stop stops the AI controller.
func (ai *MonsterAI) Stop() {
	ai.isRunning.Store(false)
	ai.SetIntention(IntentionIdle)
	ai.forget()
}

// SetIntention sets AI intention.
func (ai *MonsterAI) SetIntention(intention Intention) {
	old := Intention(ai.intention.Swap(int32(intention)))
	if old != intention && IsDebugEnabled() {
		slog.Debug("monster AI intention changed",
			"actor", ai.actorID,
			"from", old,
			"to", intention)
	}
}

// CurrentIntention returns current AI intention.
func (ai *MonsterAI) CurrentIntention() Intention {
	return Intention(ai.intention.Load())
}

// Target returns the current target, 0 if none.
func (ai *MonsterAI) Target() uint32 {
	return ai.target.Load()
}

// NotifyDamage cancels spawn immunity, adds hate and turns on the attacker
// if the monster was not fighting yet.
func (ai *MonsterAI) NotifyDamage(now time.Time, attackerID uint32, damage int32) {
	if !ai.isRunning.Load() {
		return
	}
	if ai.globalAggro.Load() < 0 {
		ai.globalAggro.Store(0)
	}

	ai.mu.Lock()
	ai.hate[attackerID] += int64(damage)
	ai.mu.Unlock()

	if ai.CurrentIntention() != IntentionAttack {
		ai.engage(now, attackerID)
	}
}

// Tick performs one AI step.
func (ai *MonsterAI) Tick(now time.Time) {
	if !ai.isRunning.Load() {
		return
	}

	self, ok := ai.views.Snapshot(ai.actorID)
	if !ok || !self.Alive {
		// respawn restarts immunity
		if ai.CurrentIntention() != IntentionIdle {
			ai.SetIntention(IntentionIdle)
			ai.forget()
		}
		return
	}
	if ai.CurrentIntention() == IntentionIdle {
		ai.globalAggro.Store(-spawnImmunityTicks)
		ai.SetIntention(IntentionActive)
	}

	if ai.globalAggro.Load() < 0 {
		ai.globalAggro.Add(1)
		return
	}

	target, ok := ai.currentTarget(now, self)
	if !ok {
		target, ok = ai.pickTarget(self)
		if !ok {
			return
		}
		ai.engage(now, target.ID)
	}

	if self.Stunned || self.Action == model.ActionCasting {
		return
	}
	ai.act(now, self, target)
}

// currentTarget validates the target kept from earlier ticks.
func (ai *MonsterAI) currentTarget(now time.Time, self model.ActorSnapshot) (model.ActorSnapshot, bool) {
	id := ai.target.Load()
	if id == 0 {
		return model.ActorSnapshot{}, false
	}

	t, ok := ai.views.Snapshot(id)
	switch {
	case !ok || !t.Alive:
	case !self.Position.InRange(t.Position, ai.cfg.ChaseRange):
	case now.UnixMilli() > ai.deadline.Load():
	default:
		return t, true
	}

	ai.mu.Lock()
	delete(ai.hate, id)
	ai.mu.Unlock()
	ai.target.Store(0)
	ai.SetIntention(IntentionActive)

	if IsDebugEnabled() {
		slog.Debug("monster AI target dropped", "actor", ai.actorID, "target", id)
	}
	return model.ActorSnapshot{}, false
}

// pickTarget prefers the most hated attacker still around, then the nearest
// hostile inside the aggro range.
func (ai *MonsterAI) pickTarget(self model.ActorSnapshot) (model.ActorSnapshot, bool) {
	ai.mu.Lock()
	hated := slices.SortedFunc(maps.Keys(ai.hate), func(a, b uint32) int {
		if ai.hate[a] != ai.hate[b] {
			if ai.hate[a] > ai.hate[b] {
				return -1
			}
			return 1
		}
		return int(a) - int(b)
	})
	ai.mu.Unlock()

	for _, id := range hated {
		t, ok := ai.views.Snapshot(id)
		if ok && t.Alive && self.Position.InRange(t.Position, ai.cfg.ChaseRange) {
			return t, true
		}
	}

	var (
		best  model.ActorSnapshot
		bestD int64
		found bool
	)
	for _, t := range ai.views.Snapshots() {
		if t.ID == self.ID || !t.Alive || !self.Team.IsHostileTo(t.Team) {
			continue
		}
		if !self.Position.InRange(t.Position, ai.cfg.AggroRange) {
			continue
		}
		d := self.Position.DistanceSquared(t.Position)
		if !found || d < bestD || (d == bestD && t.ID < best.ID) {
			best, bestD, found = t, d, true
		}
	}
	return best, found
}

func (ai *MonsterAI) engage(now time.Time, targetID uint32) {
	ai.target.Store(targetID)
	ai.deadline.Store(now.Add(attackTimeout).UnixMilli())
	ai.SetIntention(IntentionAttack)
}

// act casts the first kit skill the local pre-check allows, or keeps the
// basic attack going.
func (ai *MonsterAI) act(now time.Time, self, target model.ActorSnapshot) {
	pos := target.Position
	view := skill.ClientView{Now: now, Caster: self, TargetPosition: &pos}

	for _, id := range self.Kit.Skills {
		sk, ok := ai.skills.Get(id)
		if !ok || sk.Definition().Targeting.NeedsPoint() || sk.Definition().Hostility == data.HostileAllies {
			continue
		}
		if sk.ValidateClientSide(view, skill.Target{ActorID: target.ID}) != nil {
			continue
		}
		ai.submit.Submit(model.ActionRequest{
			ActorID:       ai.actorID,
			Kind:          model.RequestCast,
			TargetActorID: target.ID,
			SkillID:       id,
		})
		return
	}

	if self.Action == model.ActionAttacking && ai.lastAttack.Load() == target.ID {
		return
	}
	ai.lastAttack.Store(target.ID)
	ai.submit.Submit(model.ActionRequest{
		ActorID:       ai.actorID,
		Kind:          model.RequestAttack,
		TargetActorID: target.ID,
	})
}

func (ai *MonsterAI) forget() {
	ai.target.Store(0)
	ai.lastAttack.Store(0)
	ai.mu.Lock()
	clear(ai.hate)
	ai.mu.Unlock()
}
