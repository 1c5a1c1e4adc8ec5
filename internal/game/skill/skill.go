package skill

import (
	"time"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/model"
)

// Target is what a request aims at: an actor, a point, or neither (self buff).
type Target struct {
	ActorID uint32
	Point   *model.Location
}

// Finder gives skills access to the arena.
type Finder interface {
	Actor(id uint32) (*model.Actor, bool)
	ActorsInRadius(center model.Location, radius int32) []*model.Actor
	Relocate(a *model.Actor, loc model.Location)
}

// ClientView is the replicated state a client pre-check works from.
// It is a projection and may be stale; the authority never trusts the result.
type ClientView struct {
	Now    time.Time
	Caster model.ActorSnapshot
	// TargetPosition is the last known position of the target actor or point.
	// Nil for self buffs.
	TargetPosition *model.Location
}

// ExecContext carries everything a skill needs to apply its effect on the authority.
type ExecContext struct {
	Now    time.Time
	Caster *model.Actor
	// Target is the resolved actor of a SingleTarget skill, the caster for self buffs.
	Target *model.Actor
	// Point is the resolved ground point (target position for SingleTarget).
	Point model.Location

	World   Finder
	Combat  *combat.Resolver
	Effects *effect.Manager
}

// Description is a read-only summary for UI and logs.
type Description struct {
	ID                   int32         `json:"id"`
	Name                 string        `json:"name"`
	Behavior             string        `json:"behavior"`
	Targeting            string        `json:"targeting"`
	Range                int32         `json:"range"`
	Radius               int32         `json:"radius,omitempty"`
	Cooldown             time.Duration `json:"cooldown"`
	CastTime             time.Duration `json:"cast_time"`
	ManaCost             int32         `json:"mana_cost"`
	DamageType           string        `json:"damage_type"`
	Weight               int32         `json:"weight"`
	IgnoreGlobalCooldown bool          `json:"ignore_global_cooldown"`
	Effects              []string      `json:"effects,omitempty"`
}

// Skill is the fixed operation set every behavior implements.
type Skill interface {
	Definition() *data.SkillDefinition
	// ValidateClientSide is the fast local pre-check (state, cooldown, mana, range).
	ValidateClientSide(view ClientView, target Target) error
	// ExecuteOnAuthority applies the effect. Called once, at the commit point.
	ExecuteOnAuthority(ctx *ExecContext) error
	Describe() Description
}
