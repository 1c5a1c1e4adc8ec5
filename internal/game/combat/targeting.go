package combat

import (
	"errors"
	"fmt"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/model"
)

// SelectTargets filters area candidates by the hostility rule.
// Dead actors are never selected. Order of candidates is preserved.
func SelectTargets(candidates []*model.Actor, caster *model.Actor, rule data.Hostility) []*model.Actor {
	out := make([]*model.Actor, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.IsDead() {
			continue
		}
		if Matches(caster, c, rule) {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether target passes the hostility rule relative to caster.
func Matches(caster, target *model.Actor, rule data.Hostility) bool {
	switch rule {
	case data.HostileOpposingTeam:
		return caster.IsHostileTo(target)
	case data.HostileAnyMonster:
		return target.ID() != caster.ID() && target.Team().IsMonster()
	case data.HostileAllies:
		return target.ID() == caster.ID() || !caster.IsHostileTo(target)
	default:
		return false
	}
}

// ApplyEach runs fn on every target independently.
// A failing target never blocks the others; failures are joined.
func ApplyEach(targets []*model.Actor, fn func(*model.Actor) error) error {
	var errs []error
	for _, t := range targets {
		if err := fn(t); err != nil {
			errs = append(errs, fmt.Errorf("target %d: %w", t.ID(), err))
		}
	}
	return errors.Join(errs...)
}
