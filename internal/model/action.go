package model

import (
	"fmt"
	"strings"
)

// ActionState represents what an actor is currently doing.
// Mirrors the action state machine and is replicated to observers.
type ActionState uint8

const (
	// ActionIdle - actor is standing still, no active task
	ActionIdle ActionState = iota
	// ActionMoving - actor is walking toward a destination
	ActionMoving
	// ActionAttacking - actor is chasing/hitting a target with its basic attack
	ActionAttacking
	// ActionCasting - actor is approaching, channeling or resolving a skill
	ActionCasting
)

// String returns human-readable action name
func (a ActionState) String() string {
	switch a {
	case ActionIdle:
		return "IDLE"
	case ActionMoving:
		return "MOVING"
	case ActionAttacking:
		return "ATTACKING"
	case ActionCasting:
		return "CASTING_SKILL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the state as its name.
func (a ActionState) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (a *ActionState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "IDLE":
		*a = ActionIdle
	case "MOVING":
		*a = ActionMoving
	case "ATTACKING":
		*a = ActionAttacking
	case "CASTING_SKILL":
		*a = ActionCasting
	default:
		return fmt.Errorf("unknown action state %q", text)
	}
	return nil
}

// RequestKind is the kind of action a client asks for.
type RequestKind uint8

const (
	RequestMove RequestKind = iota
	RequestAttack
	RequestCast
	RequestStop
)

// String returns the wire name of the request kind.
func (k RequestKind) String() string {
	switch k {
	case RequestMove:
		return "move"
	case RequestAttack:
		return "attack"
	case RequestCast:
		return "cast"
	case RequestStop:
		return "stop"
	default:
		return "unknown"
	}
}

// ParseRequestKind converts a wire name into a RequestKind.
func ParseRequestKind(s string) (RequestKind, error) {
	switch strings.ToLower(s) {
	case "move":
		return RequestMove, nil
	case "attack":
		return RequestAttack, nil
	case "cast", "skill":
		return RequestCast, nil
	case "stop":
		return RequestStop, nil
	default:
		return 0, fmt.Errorf("unknown request kind %q", s)
	}
}

// ActionRequest is a transient client intent. It exists only while the
// authority validates and dispatches it and is never persisted.
type ActionRequest struct {
	ActorID        uint32
	Kind           RequestKind
	TargetPosition *Location // move destination, ground/area point
	TargetActorID  uint32    // 0 = no actor target
	SkillID        int32
	// Weight is carried for wire compatibility only; the authority always
	// uses the weight from the skill definition.
	Weight int32
}
