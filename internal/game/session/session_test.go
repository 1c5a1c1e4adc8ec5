package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/cooldown"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/spawn"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

const (
	skillShieldBash int32 = 2
	skillHamstring  int32 = 3
	skillFireball   int32 = 11
	skillBlizzard   int32 = 12
	skillVenomSpit  int32 = 31
)

type fakeRecorder struct {
	mu        sync.Mutex
	cooldowns map[uint32]cooldown.State
	deaths    []model.DeathRecord
}

func (r *fakeRecorder) SaveCooldowns(actorID uint32, s cooldown.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cooldowns == nil {
		r.cooldowns = make(map[uint32]cooldown.State)
	}
	r.cooldowns[actorID] = s
}

func (r *fakeRecorder) RecordDeath(d model.DeathRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deaths = append(r.deaths, d)
}

type fixture struct {
	s   *Session
	bus *event.Bus
	sub *event.Subscription
	rec *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reg, err := skill.NewRegistry(data.DefaultCatalog())
	require.NoError(t, err)

	points := spawn.NewPoints(map[model.Team]model.Location{
		model.TeamMonsters: model.NewLocation(0, 1000, 0, 0),
	}, model.NewLocation(0, 0, 0, 0))

	bus := event.NewBus(1024)
	t.Cleanup(bus.Close)

	s := New(Config{
		TickInterval:     50 * time.Millisecond,
		SweepInterval:    500 * time.Millisecond,
		GlobalCooldown:   time.Second,
		Cast:             skill.CastConfig{RangeTolerance: 50, RangeWarnThreshold: 20},
		StoppingDistance: 5,
		RespawnDelay:     5 * time.Second,
		CritMultiplier:   2,
	}, reg, points, bus)
	s.SetCritRoll(func() float64 { return 99.9 })

	rec := &fakeRecorder{}
	s.SetRecorder(rec)

	return &fixture{s: s, bus: bus, sub: bus.Subscribe(nil), rec: rec}
}

// spawnAt spawns an actor and moves it to (x, y).
func (f *fixture) spawnAt(t *testing.T, id uint32, class string, team model.Team, x, y int32) *model.Actor {
	t.Helper()

	a, err := f.s.Spawn(t0, SpawnParams{ID: id, Class: class, Team: team})
	require.NoError(t, err)
	f.s.world.Relocate(a, model.NewLocation(x, y, 0, 0))
	return a
}

// drain returns every event delivered so far.
func (f *fixture) drain() []event.Event {
	var out []event.Event
	for {
		select {
		case ev := <-f.sub.C():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func filter(events []event.Event, kind event.Kind, actorID uint32) []event.Event {
	var out []event.Event
	for _, ev := range events {
		if ev.Kind == kind && ev.ActorID == actorID {
			out = append(out, ev)
		}
	}
	return out
}

func TestSession_SameTickRequestsFIFO(t *testing.T) {
	f := newFixture(t)
	f.spawnAt(t, 1, "warrior", model.TeamRed, 0, 0)
	f.spawnAt(t, 2, "monster", model.TeamMonsters, 400, 0)

	dest := model.NewLocation(-500, 0, 0, 0)
	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestMove, TargetPosition: &dest})
	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestAttack, TargetActorID: 2})
	f.s.Tick(t0)

	assert.Equal(t, model.ActionAttacking, f.s.CurrentAction(1))

	done := filter(f.drain(), event.KindActionCompleted, 1)
	require.Len(t, done, 1)
	assert.Equal(t, event.ActionCompleted{Action: "MOVING", Reason: "superseded"}, done[0].Payload)
}

func TestSession_SameTickCastSupersedesCast(t *testing.T) {
	f := newFixture(t)
	mage := f.spawnAt(t, 1, "mage", model.TeamBlue, 0, 0)
	warrior := f.spawnAt(t, 2, "warrior", model.TeamRed, 100, 0)

	at := model.NewLocation(100, 0, 0, 0)
	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestCast, SkillID: skillFireball, TargetActorID: 2})
	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestCast, SkillID: skillBlizzard, TargetPosition: &at})
	f.s.Tick(t0)

	assert.Equal(t, model.ActionCasting, f.s.CurrentAction(1))
	assert.Equal(t, int32(900-60-120), mage.CurrentMP())
	assert.Zero(t, f.s.RemainingCooldown(1, skillFireball, t0))

	events := f.drain()
	resolved := filter(events, event.KindCastResolved, 1)
	require.Len(t, resolved, 1)
	cr := resolved[0].Payload.(event.CastResolved)
	assert.Equal(t, skillFireball, cr.SkillID)
	assert.False(t, cr.Committed)

	done := filter(events, event.KindActionCompleted, 1)
	require.Len(t, done, 1)
	assert.Equal(t, event.ActionCompleted{Action: "CASTING_SKILL", Reason: "superseded"}, done[0].Payload)

	for now := t0.Add(50 * time.Millisecond); !now.After(t0.Add(2 * time.Second)); now = now.Add(50 * time.Millisecond) {
		f.s.Tick(now)
	}

	// Blizzard: 40 + 0.7×90
	assert.Equal(t, int32(1200-103), warrior.CurrentHP())
	assert.Equal(t, model.ActionIdle, f.s.CurrentAction(1))
	assert.Equal(t, 12*time.Second, f.s.RemainingCooldown(1, skillBlizzard, t0.Add(2*time.Second)))
	assert.Zero(t, f.s.RemainingCooldown(1, skillFireball, t0.Add(2*time.Second)))
}

func TestSession_StunInterruptsCast(t *testing.T) {
	f := newFixture(t)
	mage := f.spawnAt(t, 1, "mage", model.TeamBlue, 0, 0)
	warrior := f.spawnAt(t, 2, "warrior", model.TeamRed, 30, 0)

	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestCast, SkillID: skillFireball, TargetActorID: 2})
	f.s.Tick(t0)
	assert.Equal(t, model.ActionCasting, f.s.CurrentAction(1))
	assert.Equal(t, int32(840), mage.CurrentMP())

	f.s.Submit(model.ActionRequest{ActorID: 2, Kind: model.RequestCast, SkillID: skillShieldBash, TargetActorID: 1})
	f.s.Tick(t0.Add(100 * time.Millisecond))

	assert.True(t, f.s.IsStunned(1))
	assert.Equal(t, model.ActionIdle, f.s.CurrentAction(1))

	// Well past the fireball's resolve time.
	for now := t0.Add(150 * time.Millisecond); !now.After(t0.Add(2 * time.Second)); now = now.Add(50 * time.Millisecond) {
		f.s.Tick(now)
	}

	assert.Equal(t, int32(1200), warrior.CurrentHP())
	assert.Equal(t, int32(840), mage.CurrentMP(), "mana is not refunded")
	// Shield Bash: 40 + 0.5×60
	assert.Equal(t, int32(800-70), mage.CurrentHP())

	resolved := filter(f.drain(), event.KindCastResolved, 1)
	require.Len(t, resolved, 1)
	cr := resolved[0].Payload.(event.CastResolved)
	assert.False(t, cr.Committed)
	assert.Equal(t, skillFireball, cr.SkillID)
}

func TestSession_DeathAndRespawn(t *testing.T) {
	f := newFixture(t)
	f.spawnAt(t, 1, "warrior", model.TeamRed, 0, 0)
	monster := f.spawnAt(t, 2, "monster", model.TeamMonsters, 30, 0)
	monster.SetCurrentHP(50)

	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestAttack, TargetActorID: 2})
	f.s.Tick(t0)
	f.s.Tick(t0.Add(time.Second))

	assert.True(t, monster.IsDead())
	assert.Equal(t, model.ActionIdle, f.s.CurrentAction(1))
	hp, maxHP := f.s.Health(2)
	assert.Equal(t, int32(0), hp)
	assert.Equal(t, int32(600), maxHP)

	events := f.drain()
	died := filter(events, event.KindDied, 2)
	require.Len(t, died, 1)
	assert.Equal(t, uint32(1), died[0].Payload.(event.Died).KillerID)

	require.Len(t, f.rec.deaths, 1)
	assert.Equal(t, model.DeathRecord{VictimID: 2, KillerID: 1, SkillID: 1, At: t0}, f.rec.deaths[0])

	// Respawn after the 5s delay at the monster spawn point.
	f.s.Tick(t0.Add(4 * time.Second))
	assert.True(t, monster.IsDead())

	f.s.Tick(t0.Add(5 * time.Second))
	assert.True(t, monster.IsAlive())
	assert.Equal(t, int32(600), monster.CurrentHP())
	assert.Equal(t, int32(1000), monster.Location().Y)

	respawned := filter(f.drain(), event.KindRespawned, 2)
	require.Len(t, respawned, 1)
	assert.Equal(t, event.Respawned{X: 0, Y: 1000, Z: 0}, respawned[0].Payload)
}

func TestSession_PoisonIsNonLethal(t *testing.T) {
	f := newFixture(t)
	f.spawnAt(t, 1, "monster", model.TeamMonsters, 0, 0)
	mage := f.spawnAt(t, 2, "mage", model.TeamBlue, 200, 0)

	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestCast, SkillID: skillVenomSpit, TargetActorID: 2})
	f.s.Tick(t0)
	// 20 + 0.5×40
	assert.Equal(t, int32(760), mage.CurrentHP())

	for now := t0.Add(500 * time.Millisecond); !now.After(t0.Add(3 * time.Second)); now = now.Add(500 * time.Millisecond) {
		f.s.Tick(now)
	}
	// six sweeps × 15
	assert.Equal(t, int32(670), mage.CurrentHP())

	mage.SetCurrentHP(20)
	for now := t0.Add(3500 * time.Millisecond); !now.After(t0.Add(4500 * time.Millisecond)); now = now.Add(500 * time.Millisecond) {
		f.s.Tick(now)
	}
	assert.Equal(t, int32(1), mage.CurrentHP())
	assert.True(t, mage.IsAlive())
}

func TestSession_SlowRestoresExactBaseline(t *testing.T) {
	f := newFixture(t)
	f.spawnAt(t, 1, "warrior", model.TeamRed, 0, 0)
	mage := f.spawnAt(t, 2, "mage", model.TeamBlue, 30, 0)

	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestCast, SkillID: skillHamstring, TargetActorID: 2})
	f.s.Tick(t0)

	assert.InDelta(t, 72, mage.Speed(), 1e-9)
	snap, ok := f.s.Snapshot(2)
	require.True(t, ok)
	assert.InDelta(t, 72, snap.Speed, 1e-9)

	f.s.Tick(t0.Add(3500 * time.Millisecond))
	assert.InDelta(t, 72, mage.Speed(), 1e-9)

	f.s.Tick(t0.Add(4 * time.Second))
	assert.Equal(t, 120.0, mage.Speed())
}

func TestSession_CooldownsSurviveDespawn(t *testing.T) {
	f := newFixture(t)
	f.spawnAt(t, 1, "warrior", model.TeamRed, 0, 0)
	f.spawnAt(t, 2, "monster", model.TeamMonsters, 30, 0)

	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestCast, SkillID: skillShieldBash, TargetActorID: 2})
	f.s.Tick(t0)
	assert.Equal(t, 8*time.Second, f.s.RemainingCooldown(1, skillShieldBash, t0))

	require.NoError(t, f.s.Despawn(t0.Add(time.Second), 1))
	f.s.Tick(t0.Add(time.Second))
	_, ok := f.s.Snapshot(1)
	assert.False(t, ok)

	saved, ok := f.rec.cooldowns[1]
	require.True(t, ok)
	assert.Equal(t, t0, saved.Skills[skillShieldBash])

	_, err := f.s.Spawn(t0.Add(2*time.Second), SpawnParams{ID: 1, Class: "warrior", Team: model.TeamRed, Cooldowns: &saved})
	require.NoError(t, err)
	f.s.Tick(t0.Add(2 * time.Second))

	now := t0.Add(2 * time.Second)
	assert.Equal(t, 6*time.Second, f.s.RemainingCooldown(1, skillShieldBash, now))
	assert.InDelta(t, 0.25, f.s.CooldownProgressNormalized(1, skillShieldBash, now), 1e-9)

	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestCast, SkillID: skillShieldBash, TargetActorID: 2})
	f.s.Tick(now.Add(50 * time.Millisecond))
	assert.Equal(t, model.ActionIdle, f.s.CurrentAction(1), "still on cooldown after reconnect")
}

func TestSession_SpawnErrors(t *testing.T) {
	f := newFixture(t)
	f.spawnAt(t, 1, "warrior", model.TeamRed, 0, 0)

	_, err := f.s.Spawn(t0, SpawnParams{ID: 1, Class: "warrior"})
	assert.ErrorIs(t, err, ErrDuplicateActor)

	_, err = f.s.Spawn(t0, SpawnParams{ID: 5, Class: "bard"})
	var cfgErr *data.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	assert.ErrorIs(t, f.s.Despawn(t0, 99), ErrUnknownActor)

	// Requests for unknown actors are dropped without a reply.
	f.s.Submit(model.ActionRequest{ActorID: 99, Kind: model.RequestStop})
	f.s.Tick(t0)
}

func TestSession_ActorStateCoalescedPerTick(t *testing.T) {
	f := newFixture(t)
	f.spawnAt(t, 1, "warrior", model.TeamRed, 0, 0)
	f.spawnAt(t, 2, "monster", model.TeamMonsters, 30, 0)
	f.s.Tick(t0)
	f.drain()

	// Several mutations on the monster in one tick: damage, mana, effect.
	f.s.Submit(model.ActionRequest{ActorID: 1, Kind: model.RequestCast, SkillID: skillHamstring, TargetActorID: 2})
	f.s.Tick(t0.Add(50 * time.Millisecond))

	events := f.drain()
	assert.Len(t, filter(events, event.KindActorState, 2), 1)
	assert.Len(t, filter(events, event.KindActorState, 1), 1)

	// The snapshot is the last event of the tick for its actor.
	states := filter(events, event.KindActorState, 2)
	snap := states[0].Payload.(model.ActorSnapshot)
	assert.Equal(t, int32(600-33), snap.Health)
	assert.InDelta(t, 60, snap.Speed, 1e-9)

	// Nothing changed: nothing published.
	f.s.Tick(t0.Add(100 * time.Millisecond))
	assert.Empty(t, f.drain())
}
