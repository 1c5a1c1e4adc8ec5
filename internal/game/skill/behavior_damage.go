package skill

import (
	"fmt"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/model"
)

// Strike deals damage to a single hostile target and applies the skill's
// control effects if it survives. Skills with no power only apply effects.
type Strike struct{ base }

// NewStrike creates a Strike skill.
func NewStrike(def *data.SkillDefinition) Skill { return &Strike{base{def}} }

func (s *Strike) ExecuteOnAuthority(ctx *ExecContext) error {
	if ctx.Target == nil || ctx.Target.IsDead() {
		return ErrInvalidTarget
	}
	return s.hit(ctx, ctx.Target)
}

// hit is the per-target damage pipeline shared with Nova.
func (s *Strike) hit(ctx *ExecContext, target *model.Actor) error {
	if amount := combat.BaseAmount(s.def, ctx.Caster); amount > 0 {
		src := combat.Source{Actor: ctx.Caster, SkillID: s.def.ID}
		if _, err := ctx.Combat.Damage(ctx.Now, src, target, amount, s.def.CritChance); err != nil {
			return fmt.Errorf("damage: %w", err)
		}
	}
	return s.applyControlEffects(ctx, target)
}

// Nova runs the damage pipeline on every actor within Radius of the point
// that passes the skill's hostility filter.
type Nova struct{ Strike }

// NewNova creates a Nova skill.
func NewNova(def *data.SkillDefinition) Skill { return &Nova{Strike{base{def}}} }

func (n *Nova) ExecuteOnAuthority(ctx *ExecContext) error {
	candidates := ctx.World.ActorsInRadius(ctx.Point, n.def.Radius)
	targets := combat.SelectTargets(candidates, ctx.Caster, n.def.Hostility)
	return combat.ApplyEach(targets, func(t *model.Actor) error {
		return n.hit(ctx, t)
	})
}
