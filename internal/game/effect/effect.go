package effect

import (
	"fmt"
	"time"
)

// Type: вид контроль-эффекта.
type Type uint8

const (
	// Stun blocks every action and interrupts the current one.
	Stun Type = iota + 1
	// Silence blocks skill casts only.
	Silence
	// Slow scales movement speed by (1 - magnitude).
	Slow
	// Poison deals magnitude damage on every sweep.
	Poison
)

// Types lists every effect type in sweep order.
var Types = [...]Type{Stun, Silence, Slow, Poison}

func (t Type) String() string {
	switch t {
	case Stun:
		return "Stun"
	case Silence:
		return "Silence"
	case Slow:
		return "Slow"
	case Poison:
		return "Poison"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the type as its name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseType converts a catalog effect name into a Type.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown control effect %q", s)
}

// ControlEffect is one timed status condition on an actor.
type ControlEffect struct {
	Type      Type      `json:"type"`
	SourceID  uint32    `json:"source_id"` // caster actor
	SkillID   int32     `json:"skill_id"`
	EndTime   time.Time `json:"end_time"`
	Magnitude float64   `json:"magnitude"`
	Weight    int32     `json:"weight"`
}

// Expired reports whether the effect ended at or before now.
func (e ControlEffect) Expired(now time.Time) bool {
	return !e.EndTime.After(now)
}

// sameSource reports whether two effects come from the same caster and skill.
func (e ControlEffect) sameSource(o ControlEffect) bool {
	return e.SourceID == o.SourceID && e.SkillID == o.SkillID
}

// PoisonTick is the damage one active poison deals on a sweep.
type PoisonTick struct {
	ActorID  uint32
	SourceID uint32
	SkillID  int32
	Damage   int32
}
