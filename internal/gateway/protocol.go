package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
)

// Message types sent by the server.
const (
	MessageWelcome = "welcome"
	MessageEvent   = "event"
)

// Point is a world position on the wire.
type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// Location converts the point to a world location.
func (p Point) Location() model.Location {
	return model.NewLocation(p.X, p.Y, p.Z, 0)
}

// Request is a client action request. The actor is the one the connection
// is bound to; a request can never act for someone else.
type Request struct {
	Kind   string `json:"kind"` // move, attack, cast, stop
	Target uint32 `json:"target,omitempty"`
	Skill  int32  `json:"skill,omitempty"`
	Point  *Point `json:"point,omitempty"`
	Weight int32  `json:"weight,omitempty"` // ignored by the authority
}

// ToAction converts the wire request into an ActionRequest for actorID.
func (r Request) ToAction(actorID uint32) (model.ActionRequest, error) {
	kind, err := model.ParseRequestKind(r.Kind)
	if err != nil {
		return model.ActionRequest{}, err
	}

	req := model.ActionRequest{
		ActorID:       actorID,
		Kind:          kind,
		TargetActorID: r.Target,
		SkillID:       r.Skill,
		Weight:        r.Weight,
	}
	if r.Point != nil {
		loc := r.Point.Location()
		req.TargetPosition = &loc
	}
	return req, nil
}

// Message is the envelope of everything the server sends.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Welcome is the first message on a connection.
type Welcome struct {
	ConnectionID string                `json:"connection_id"`
	ActorID      uint32                `json:"actor_id"`
	Actors       []model.ActorSnapshot `json:"actors"`
	Skills       []skill.Description   `json:"skills"`
}

// wireEvent mirrors event.Event with an undecoded payload.
type wireEvent struct {
	ID      ulid.ULID       `json:"id"`
	Kind    event.Kind      `json:"kind"`
	ActorID uint32          `json:"actor_id"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeEvent decodes an event message payload, restoring the typed payload by kind.
func DecodeEvent(raw json.RawMessage) (event.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return event.Event{}, fmt.Errorf("decoding event: %w", err)
	}

	ev := event.Event{ID: w.ID, Kind: w.Kind, ActorID: w.ActorID, At: w.At}

	var err error
	switch w.Kind {
	case event.KindHealthChanged:
		ev.Payload, err = decodeAs[event.HealthChanged](w.Payload)
	case event.KindManaChanged:
		ev.Payload, err = decodeAs[event.ManaChanged](w.Payload)
	case event.KindCooldownChanged:
		ev.Payload, err = decodeAs[event.CooldownChanged](w.Payload)
	case event.KindActionChanged:
		ev.Payload, err = decodeAs[event.ActionChanged](w.Payload)
	case event.KindActionCompleted:
		ev.Payload, err = decodeAs[event.ActionCompleted](w.Payload)
	case event.KindCastResolved:
		ev.Payload, err = decodeAs[event.CastResolved](w.Payload)
	case event.KindEffectChanged:
		ev.Payload, err = decodeAs[event.EffectChanged](w.Payload)
	case event.KindDied:
		ev.Payload, err = decodeAs[event.Died](w.Payload)
	case event.KindRespawned:
		ev.Payload, err = decodeAs[event.Respawned](w.Payload)
	case event.KindActorState:
		ev.Payload, err = decodeAs[model.ActorSnapshot](w.Payload)
	case event.KindDespawned:
	default:
		return event.Event{}, fmt.Errorf("unknown event kind %q", w.Kind)
	}
	if err != nil {
		return event.Event{}, fmt.Errorf("decoding %s payload: %w", w.Kind, err)
	}
	return ev, nil
}

func decodeAs[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}
