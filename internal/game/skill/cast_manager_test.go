package skill

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/model"
)

func TestCastManager_ValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *harness, caster, target *model.Actor)
		skillID int32
		use     Use
		want    error
	}{
		{
			name:    "dead beats everything",
			setup:   func(h *harness, c, _ *model.Actor) { c.MarkDead(); h.stun(c.ID(), t0.Add(time.Minute)) },
			skillID: skillShieldBash, want: ErrDead,
		},
		{
			name: "stunned before silenced",
			setup: func(h *harness, c, _ *model.Actor) {
				h.stun(c.ID(), t0.Add(time.Minute))
				h.silence(c.ID(), t0.Add(time.Minute))
			},
			skillID: skillShieldBash, want: ErrStunned,
		},
		{
			name:    "silenced blocks casts",
			setup:   func(h *harness, c, _ *model.Actor) { h.silence(c.ID(), t0.Add(time.Minute)) },
			skillID: skillShieldBash, want: ErrSilenced,
		},
		{
			name:    "silenced does not block basic attack",
			setup:   func(h *harness, c, _ *model.Actor) { h.silence(c.ID(), t0.Add(time.Minute)) },
			skillID: skillSlash, use: UseBasicAttack, want: nil,
		},
		{
			name:    "skill not in kit before cooldown",
			setup:   func(h *harness, c, _ *model.Actor) { h.cooldowns.Stamp(c.ID(), skillFireball, t0, true) },
			skillID: skillFireball, want: ErrNotInKit,
		},
		{
			name:    "per-skill cooldown before global",
			setup:   func(h *harness, c, _ *model.Actor) { h.cooldowns.Stamp(c.ID(), skillShieldBash, t0, true) },
			skillID: skillShieldBash, want: ErrOnCooldown,
		},
		{
			name:    "global cooldown",
			setup:   func(h *harness, c, _ *model.Actor) { h.cooldowns.Stamp(c.ID(), skillHamstring, t0, true) },
			skillID: skillShieldBash, want: ErrGlobalCooldown,
		},
		{
			name:    "mana before range",
			setup:   func(h *harness, c, tg *model.Actor) { c.SetCurrentMP(10); h.world.Relocate(tg, model.NewLocation(5000, 0, 0, 0)) },
			skillID: skillShieldBash, want: ErrNotEnoughMana,
		},
		{
			name:    "out of range",
			setup:   func(h *harness, _, tg *model.Actor) { h.world.Relocate(tg, model.NewLocation(200, 0, 0, 0)) },
			skillID: skillShieldBash, want: ErrOutOfRange,
		},
		{
			name:    "dead target",
			setup:   func(_ *harness, _, tg *model.Actor) { tg.MarkDead() },
			skillID: skillShieldBash, want: ErrInvalidTarget,
		},
		{
			name:    "valid",
			setup:   func(*harness, *model.Actor, *model.Actor) {},
			skillID: skillShieldBash, want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			caster := h.spawn(t, 1, "warrior", model.TeamRed, 0, 0)
			target := h.spawn(t, 2, "warrior", model.TeamBlue, 40, 0)
			tt.setup(h, caster, target)

			_, _, err := h.cm.Validate(t0.Add(100*time.Millisecond), caster, tt.skillID, tt.use, Target{ActorID: target.ID()})
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCastManager_RangeTolerance(t *testing.T) {
	tests := []struct {
		name string
		x    int32
		want error
	}{
		{"inside range", 50, nil},
		{"drift within warn threshold", 65, nil},
		{"drift logged but accepted", 95, nil},
		{"beyond tolerance", 101, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			caster := h.spawn(t, 1, "warrior", model.TeamRed, 0, 0)
			target := h.spawn(t, 2, "warrior", model.TeamBlue, tt.x, 0)

			_, _, err := h.cm.Validate(t0, caster, skillSlash, UseBasicAttack, Target{ActorID: target.ID()})
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCastManager_InstantCommit(t *testing.T) {
	h := newHarness(t)
	caster := h.spawn(t, 1, "warrior", model.TeamRed, 0, 0)
	target := h.spawn(t, 2, "mage", model.TeamBlue, 40, 0)

	p, err := h.cm.Begin(t0, caster, skillShieldBash, UseCast, Target{ActorID: target.ID()})
	require.NoError(t, err)

	assert.True(t, p.Resolved())
	assert.True(t, p.Committed())
	assert.Equal(t, int32(300-30), caster.CurrentMP())
	// 40 + 0.5*60
	assert.Equal(t, int32(800-70), target.CurrentHP())
	assert.True(t, h.effects.IsStunned(target.ID()))

	def := p.Skill.Definition()
	assert.Equal(t, def.Cooldown, h.cooldowns.Remaining(caster.ID(), skillShieldBash, def.Cooldown, t0))
	assert.Equal(t, time.Second, h.cooldowns.GlobalRemaining(caster.ID(), t0))
	assert.ErrorIs(t, h.cm.Commit(t0, caster, p), ErrCastResolved)
}

func TestCastManager_DeferredCommit(t *testing.T) {
	h := newHarness(t)
	caster := h.spawn(t, 1, "mage", model.TeamRed, 0, 0)
	target := h.spawn(t, 2, "warrior", model.TeamBlue, 500, 0)

	p, err := h.cm.Begin(t0, caster, skillFireball, UseCast, Target{ActorID: target.ID()})
	require.NoError(t, err)

	assert.False(t, p.Resolved())
	assert.Equal(t, int32(900-60), caster.CurrentMP(), "mana spent at begin")
	assert.Equal(t, int32(1200), target.CurrentHP(), "no damage before commit")
	assert.Zero(t, h.cooldowns.Remaining(caster.ID(), skillFireball, 4*time.Second, t0))
	assert.False(t, p.Ready(t0.Add(time.Second)))

	commitAt := t0.Add(1500 * time.Millisecond)
	require.True(t, p.Ready(commitAt))
	require.NoError(t, h.cm.Commit(commitAt, caster, p))

	// 80 + 1.2*90
	assert.Equal(t, int32(1200-188), target.CurrentHP())
	assert.Equal(t, 4*time.Second, h.cooldowns.Remaining(caster.ID(), skillFireball, 4*time.Second, commitAt))
}

// A cast interrupted by stun before its commit point leaves the target and
// every other actor untouched; only the caster's spent mana is gone.
func TestCastManager_CommitAbortsOnStun(t *testing.T) {
	h := newHarness(t)
	caster := h.spawn(t, 1, "mage", model.TeamRed, 0, 0)
	target := h.spawn(t, 2, "warrior", model.TeamBlue, 500, 0)
	bystander := h.spawn(t, 3, "cleric", model.TeamBlue, 520, 0)

	p, err := h.cm.Begin(t0, caster, skillFireball, UseCast, Target{ActorID: target.ID()})
	require.NoError(t, err)
	manaAfterBegin := caster.CurrentMP()

	h.stun(caster.ID(), t0.Add(5*time.Second))

	err = h.cm.Commit(t0.Add(1500*time.Millisecond), caster, p)
	assert.ErrorIs(t, err, ErrStunned)
	assert.True(t, p.Resolved())
	assert.False(t, p.Committed())

	assert.Equal(t, int32(1200), target.CurrentHP())
	assert.Equal(t, int32(950), bystander.CurrentHP())
	assert.Equal(t, manaAfterBegin, caster.CurrentMP(), "mana is not refunded")
	assert.Empty(t, h.effects.Active(target.ID()))
}

func TestCastManager_CommitAbortsOnMissingTarget(t *testing.T) {
	h := newHarness(t)
	caster := h.spawn(t, 1, "mage", model.TeamRed, 0, 0)
	target := h.spawn(t, 2, "warrior", model.TeamBlue, 500, 0)

	p, err := h.cm.Begin(t0, caster, skillFireball, UseCast, Target{ActorID: target.ID()})
	require.NoError(t, err)

	h.world.Remove(target.ID())

	err = h.cm.Commit(t0.Add(2*time.Second), caster, p)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.False(t, p.Committed())
	assert.Equal(t, int32(1200), target.CurrentHP())
	// Commit-time abort still stamps.
	assert.Equal(t, t0.Add(2*time.Second), h.cooldowns.LastUse(caster.ID(), skillFireball))
}

func TestCastManager_AbortIsIdempotent(t *testing.T) {
	h := newHarness(t)
	caster := h.spawn(t, 1, "mage", model.TeamRed, 0, 0)
	target := h.spawn(t, 2, "warrior", model.TeamBlue, 500, 0)

	p, err := h.cm.Begin(t0, caster, skillFireball, UseCast, Target{ActorID: target.ID()})
	require.NoError(t, err)

	h.cm.Abort(t0.Add(time.Second), caster, p, errors.New("interrupted"))
	h.cm.Abort(t0.Add(3*time.Second), caster, p, errors.New("again"))

	assert.True(t, p.Resolved())
	assert.False(t, p.Committed())
	assert.ErrorIs(t, h.cm.Commit(t0.Add(2*time.Second), caster, p), ErrCastResolved)
	assert.Equal(t, int32(1200), target.CurrentHP())
}

// Cancelling before the commit point stamps nothing: the skill and the
// global cooldown are free for the next request right away.
func TestCastManager_AbortLeavesCooldownsUntouched(t *testing.T) {
	h := newHarness(t)
	caster := h.spawn(t, 1, "mage", model.TeamRed, 0, 0)
	target := h.spawn(t, 2, "warrior", model.TeamBlue, 500, 0)

	p, err := h.cm.Begin(t0, caster, skillFireball, UseCast, Target{ActorID: target.ID()})
	require.NoError(t, err)

	now := t0.Add(500 * time.Millisecond)
	h.cm.Abort(now, caster, p, errors.New("superseded"))

	assert.True(t, h.cooldowns.LastUse(caster.ID(), skillFireball).IsZero())
	assert.Zero(t, h.cooldowns.GlobalRemaining(caster.ID(), now))

	_, err = h.cm.Begin(now, caster, skillFireball, UseCast, Target{ActorID: target.ID()})
	assert.NoError(t, err)
}

// A skill flagged ignoreGlobalCooldown is castable inside the global window;
// a skill without the flag is rejected in the same situation.
func TestCastManager_IgnoreGlobalCooldown(t *testing.T) {
	h := newHarness(t)
	caster := h.spawn(t, 1, "warrior", model.TeamRed, 0, 0)
	target := h.spawn(t, 2, "warrior", model.TeamBlue, 40, 0)
	tgt := Target{ActorID: target.ID()}

	_, err := h.cm.Begin(t0, caster, skillShieldBash, UseCast, tgt)
	require.NoError(t, err)
	require.Positive(t, h.cooldowns.GlobalRemaining(caster.ID(), t0.Add(200*time.Millisecond)))

	now := t0.Add(200 * time.Millisecond)
	_, err = h.cm.Begin(now, caster, skillSlash, UseCast, tgt)
	assert.NoError(t, err, "Slash ignores the global cooldown")

	_, err = h.cm.Begin(now, caster, skillHamstring, UseCast, tgt)
	assert.ErrorIs(t, err, ErrGlobalCooldown)

	// Off-GCD skills do not restart the global window.
	assert.Equal(t, 800*time.Millisecond, h.cooldowns.GlobalRemaining(caster.ID(), now))
}

func TestCastManager_FriendlyTargets(t *testing.T) {
	h := newHarness(t)
	cleric := h.spawn(t, 1, "cleric", model.TeamRed, 0, 0)
	ally := h.spawn(t, 2, "warrior", model.TeamRed, 100, 0)
	enemy := h.spawn(t, 3, "warrior", model.TeamBlue, 100, 50)

	_, _, err := h.cm.Validate(t0, cleric, skillMend, UseCast, Target{ActorID: enemy.ID()})
	assert.ErrorIs(t, err, ErrInvalidTarget, "mend cannot target enemies")

	_, res, err := h.cm.Validate(t0, cleric, skillMend, UseCast, Target{})
	require.NoError(t, err)
	assert.Equal(t, cleric, res.Actor, "no target means self")

	_, _, err = h.cm.Validate(t0, cleric, 20, UseBasicAttack, Target{ActorID: ally.ID()})
	assert.ErrorIs(t, err, ErrInvalidTarget, "attacks cannot target allies")
}

func TestCastManager_PointTargets(t *testing.T) {
	h := newHarness(t)
	mage := h.spawn(t, 1, "mage", model.TeamRed, 0, 0)
	enemy := h.spawn(t, 2, "warrior", model.TeamBlue, 300, 0)

	_, _, err := h.cm.Validate(t0, mage, skillBlizzard, UseCast, Target{})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, res, err := h.cm.Validate(t0, mage, skillBlizzard, UseCast, Target{ActorID: enemy.ID()})
	require.NoError(t, err)
	assert.Equal(t, enemy.Location(), res.Point, "area centered on the target actor")

	_, _, err = h.cm.Validate(t0, mage, skillBlizzard, UseCast, Target{Point: point(900, 0)})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCastManager_Events(t *testing.T) {
	h := newHarness(t)
	caster := h.spawn(t, 1, "warrior", model.TeamRed, 0, 0)
	target := h.spawn(t, 2, "warrior", model.TeamBlue, 40, 0)

	_, err := h.cm.Begin(t0, caster, skillHamstring, UseCast, Target{ActorID: target.ID()})
	require.NoError(t, err)

	assert.Equal(t, []uint32{1, 2}, h.outbox.Dirty())
	// mana, health, cooldown, cast resolved
	assert.Equal(t, 4, h.outbox.Len())
	assert.InDelta(t, 0.4, h.effects.SlowMagnitude(target.ID()), 1e-9)
	assert.True(t, h.effects.Has(target.ID(), effect.Slow))
}
