package skill

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/model"
)

// Mend heals a single friendly target, the caster when no target is given.
type Mend struct{ base }

// NewMend creates a Mend skill.
func NewMend(def *data.SkillDefinition) Skill { return &Mend{base{def}} }

func (m *Mend) ExecuteOnAuthority(ctx *ExecContext) error {
	target := ctx.Target
	if target == nil {
		target = ctx.Caster
	}
	if target.IsDead() {
		return ErrInvalidTarget
	}
	src := combat.Source{Actor: ctx.Caster, SkillID: m.def.ID}
	if _, err := ctx.Combat.Heal(ctx.Now, src, target, combat.BaseAmount(m.def, ctx.Caster)); err != nil {
		return fmt.Errorf("heal: %w", err)
	}
	return m.applyControlEffects(ctx, target)
}

// Blessing heals every actor within Radius of the point that passes the hostility filter.
type Blessing struct{ base }

// NewBlessing creates a Blessing skill.
func NewBlessing(def *data.SkillDefinition) Skill { return &Blessing{base{def}} }

func (b *Blessing) ExecuteOnAuthority(ctx *ExecContext) error {
	amount := combat.BaseAmount(b.def, ctx.Caster)
	src := combat.Source{Actor: ctx.Caster, SkillID: b.def.ID}

	candidates := ctx.World.ActorsInRadius(ctx.Point, b.def.Radius)
	targets := combat.SelectTargets(candidates, ctx.Caster, b.def.Hostility)
	return combat.ApplyEach(targets, func(t *model.Actor) error {
		if _, err := ctx.Combat.Heal(ctx.Now, src, t, amount); err != nil {
			return err
		}
		return b.applyControlEffects(ctx, t)
	})
}

// Blink relocates the caster toward the ground point, at most Range units.
type Blink struct{ base }

// NewBlink creates a Blink skill.
func NewBlink(def *data.SkillDefinition) Skill { return &Blink{base{def}} }

func (b *Blink) ExecuteOnAuthority(ctx *ExecContext) error {
	from := ctx.Caster.Location()
	dest := from.StepToward(ctx.Point, float64(b.def.Range))
	dest = dest.WithHeading(from.HeadingTo(ctx.Point))
	ctx.World.Relocate(ctx.Caster, dest)

	slog.Debug("blink",
		"caster", ctx.Caster.ID(),
		"from", from,
		"to", ctx.Caster.Location())
	return nil
}

// Purify removes Slow and Poison from the caster.
type Purify struct{ base }

// NewPurify creates a Purify skill.
func NewPurify(def *data.SkillDefinition) Skill { return &Purify{base{def}} }

func (p *Purify) ExecuteOnAuthority(ctx *ExecContext) error {
	if ctx.Effects == nil {
		return nil
	}
	ctx.Effects.Clear(ctx.Now, ctx.Caster.ID(), effect.Slow)
	ctx.Effects.Clear(ctx.Now, ctx.Caster.ID(), effect.Poison)
	return p.applyControlEffects(ctx, ctx.Caster)
}
