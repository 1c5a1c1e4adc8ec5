package skill

import (
	"fmt"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/cooldown"
	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/model"
)

// behaviorRegistry maps behavior name → factory function.
// Populated by init() below; a catalog skill with an unknown behavior
// fails registry construction.
var behaviorRegistry = map[string]func(def *data.SkillDefinition) Skill{}

// RegisterBehavior registers a behavior factory by name.
func RegisterBehavior(name string, factory func(def *data.SkillDefinition) Skill) {
	behaviorRegistry[name] = factory
}

// CreateSkill creates a skill from its definition using the registered factory.
func CreateSkill(def *data.SkillDefinition) (Skill, error) {
	factory, ok := behaviorRegistry[def.Behavior]
	if !ok {
		return nil, &data.ConfigError{
			SkillID: def.ID,
			Field:   "behavior",
			Reason:  fmt.Sprintf("unknown behavior %q", def.Behavior),
		}
	}
	return factory(def), nil
}

func init() {
	RegisterBehavior("Strike", NewStrike)
	RegisterBehavior("Nova", NewNova)
	RegisterBehavior("Blessing", NewBlessing)
	RegisterBehavior("Mend", NewMend)
	RegisterBehavior("Blink", NewBlink)
	RegisterBehavior("Purify", NewPurify)
}

// base carries the definition and the operations shared by every behavior.
type base struct {
	def *data.SkillDefinition
}

func (b base) Definition() *data.SkillDefinition { return b.def }

func (b base) Describe() Description {
	d := Description{
		ID:                   b.def.ID,
		Name:                 b.def.Name,
		Behavior:             b.def.Behavior,
		Targeting:            b.def.Targeting.String(),
		Range:                b.def.Range,
		Radius:               b.def.Radius,
		Cooldown:             b.def.Cooldown,
		CastTime:             b.def.CastTime,
		ManaCost:             b.def.ManaCost,
		DamageType:           b.def.DamageType.String(),
		Weight:               b.def.Weight,
		IgnoreGlobalCooldown: b.def.IgnoreGlobalCooldown,
	}
	for _, e := range b.def.Effects {
		d.Effects = append(d.Effects, fmt.Sprintf("%s %s", e.Type, e.Duration))
	}
	return d
}

// ValidateClientSide checks the replicated view in the authority's order,
// without range tolerance.
func (b base) ValidateClientSide(view ClientView, target Target) error {
	c := view.Caster
	switch {
	case !c.Alive:
		return ErrDead
	case c.Stunned:
		return ErrStunned
	case c.Silenced && c.Kit.BasicAttack != b.def.ID:
		return ErrSilenced
	case !c.Kit.Has(b.def.ID):
		return ErrNotInKit
	case cooldown.Remaining(b.def.Cooldown, c.SkillLastUse[b.def.ID], view.Now) > 0:
		return ErrOnCooldown
	case !b.def.IgnoreGlobalCooldown && cooldown.Remaining(c.GlobalCooldown, c.GlobalLastUse, view.Now) > 0:
		return ErrGlobalCooldown
	case c.Mana < b.def.ManaCost:
		return ErrNotEnoughMana
	}

	if !b.def.Targeting.NeedsRange() {
		return nil
	}
	if view.TargetPosition == nil {
		if b.def.Targeting == data.TargetSingleTarget && target.ActorID == 0 && b.def.Hostility == data.HostileAllies {
			return nil
		}
		return ErrInvalidTarget
	}
	if !c.Position.InRange(*view.TargetPosition, b.def.Range) {
		return ErrOutOfRange
	}
	return nil
}

// applyControlEffects puts the skill's control effects on target.
// Rejections by weight are not errors.
func (b base) applyControlEffects(ctx *ExecContext, target *model.Actor) error {
	if target.IsDead() || ctx.Effects == nil {
		return nil
	}
	for _, e := range b.def.Effects {
		typ, err := effect.ParseType(e.Type)
		if err != nil {
			return fmt.Errorf("skill %d: %w", b.def.ID, err)
		}
		ctx.Effects.Apply(ctx.Now, target.ID(), effect.ControlEffect{
			Type:      typ,
			SourceID:  ctx.Caster.ID(),
			SkillID:   b.def.ID,
			EndTime:   ctx.Now.Add(e.Duration),
			Magnitude: e.Magnitude,
			Weight:    b.def.EffectWeight(e),
		})
	}
	return nil
}
