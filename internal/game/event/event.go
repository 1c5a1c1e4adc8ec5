package event

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind identifies what happened to an actor.
type Kind string

const (
	KindHealthChanged   Kind = "health_changed"
	KindManaChanged     Kind = "mana_changed"
	KindCooldownChanged Kind = "cooldown_changed"
	KindActionChanged   Kind = "action_changed"
	KindActionCompleted Kind = "action_completed"
	KindCastResolved    Kind = "cast_resolved"
	KindEffectChanged   Kind = "effect_changed"
	KindDied            Kind = "died"
	KindRespawned       Kind = "respawned"
	KindActorState      Kind = "actor_state"
	KindDespawned       Kind = "despawned"
)

// Event is an immutable notification raised by the authority after a mutation.
// Payload is one of the payload structs below or model.ActorSnapshot; receivers
// must not modify it.
type Event struct {
	ID      ulid.ULID `json:"id"`
	Kind    Kind      `json:"kind"`
	ActorID uint32    `json:"actor_id"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// New creates an event with a fresh ULID.
func New(kind Kind, actorID uint32, at time.Time, payload any) Event {
	return Event{
		ID:      ulid.Make(),
		Kind:    kind,
		ActorID: actorID,
		At:      at,
		Payload: payload,
	}
}

// HealthChanged is the payload of KindHealthChanged.
type HealthChanged struct {
	Current  int32  `json:"current"`
	Max      int32  `json:"max"`
	Delta    int32  `json:"delta"`
	SourceID uint32 `json:"source_id,omitempty"`
	SkillID  int32  `json:"skill_id,omitempty"`
	Critical bool   `json:"critical,omitempty"`
}

// ManaChanged is the payload of KindManaChanged.
type ManaChanged struct {
	Current int32 `json:"current"`
	Max     int32 `json:"max"`
}

// CooldownChanged is the payload of KindCooldownChanged.
type CooldownChanged struct {
	SkillID  int32         `json:"skill_id"`
	LastUse  time.Time     `json:"last_use"`
	Cooldown time.Duration `json:"cooldown"`
	Global   bool          `json:"global"`
}

// ActionChanged is the payload of KindActionChanged.
type ActionChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ActionCompleted is the payload of KindActionCompleted.
// Reason is "arrived", "target_lost", "resolved", "interrupted" or "stopped".
type ActionCompleted struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// CastResolved is the payload of KindCastResolved.
type CastResolved struct {
	SkillID   int32  `json:"skill_id"`
	Committed bool   `json:"committed"`
	Reason    string `json:"reason,omitempty"`
}

// EffectChanged is the payload of KindEffectChanged.
type EffectChanged struct {
	Type     string  `json:"type"`
	Active   bool    `json:"active"`
	Stunned  bool    `json:"stunned"`
	Silenced bool    `json:"silenced"`
	Speed    float64 `json:"speed"`
}

// Died is the payload of KindDied.
type Died struct {
	KillerID  uint32    `json:"killer_id"`
	SkillID   int32     `json:"skill_id"`
	RespawnAt time.Time `json:"respawn_at"`
}

// Respawned is the payload of KindRespawned.
type Respawned struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}
