package skill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/game/cooldown"
	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/world"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// Skill IDs of the built-in catalog used across tests.
const (
	skillSlash      int32 = 1
	skillShieldBash int32 = 2
	skillHamstring  int32 = 3
	skillWhirlwind  int32 = 4
	skillFireball   int32 = 11
	skillBlizzard   int32 = 12
	skillBlink      int32 = 14
	skillMend       int32 = 21
	skillSanctuary  int32 = 22
	skillExorcism   int32 = 23
	skillPurify     int32 = 24
)

type harness struct {
	world     *world.World
	cooldowns *cooldown.Tracker
	effects   *effect.Manager
	resolver  *combat.Resolver
	outbox    *event.Outbox
	registry  *Registry
	cm        *CastManager
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	reg, err := NewRegistry(data.DefaultCatalog())
	require.NoError(t, err)

	h := &harness{
		world:     world.New(),
		cooldowns: cooldown.NewTracker(time.Second),
		effects:   effect.NewManager(nil),
		outbox:    event.NewOutbox(),
		registry:  reg,
	}
	h.resolver = combat.NewResolver(combat.Config{CritMultiplier: 2, RespawnDelay: 5 * time.Second}, nil, h.outbox)
	h.resolver.SetRoll(func() float64 { return 99.9 })
	h.cm = NewCastManager(
		CastConfig{RangeTolerance: 50, RangeWarnThreshold: 20},
		reg, h.cooldowns, h.effects, h.resolver, h.world, h.outbox,
	)
	return h
}

func (h *harness) spawn(t *testing.T, id uint32, class string, team model.Team, x, y int32) *model.Actor {
	t.Helper()

	ck, kit, err := h.registry.Kit(class)
	require.NoError(t, err)

	a := model.NewActor(id, class, team, model.NewLocation(x, y, 0, 0), ck.MaxHP, ck.MaxMP, ck.Speed)
	a.SetClass(class)
	a.SetPower(ck.AttackPower, ck.SpellPower)
	a.SetKit(kit)
	require.NoError(t, h.world.Add(a))
	h.cooldowns.Assign(id, kit.All())
	return a
}

func (h *harness) stun(actorID uint32, until time.Time) {
	h.effects.Apply(t0, actorID, effect.ControlEffect{Type: effect.Stun, EndTime: until, Weight: 10})
}

func (h *harness) silence(actorID uint32, until time.Time) {
	h.effects.Apply(t0, actorID, effect.ControlEffect{Type: effect.Silence, EndTime: until, Weight: 10})
}

func point(x, y int32) *model.Location {
	loc := model.NewLocation(x, y, 0, 0)
	return &loc
}
