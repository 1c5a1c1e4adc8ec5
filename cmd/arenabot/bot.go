package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/gateway"
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/predict"
)

// Heal self below this fraction of max health.
const healThreshold = 0.5

type bot struct {
	registry *skill.Registry
	view     *predict.Projection
	ws       *websocket.Conn

	// closed by readLoop once the welcome arrived
	ready chan struct{}
}

func newBot(actorID uint32, registry *skill.Registry, ws *websocket.Conn) *bot {
	return &bot{
		registry: registry,
		view:     predict.NewProjection(actorID, registry),
		ws:       ws,
		ready:    make(chan struct{}),
	}
}

// readLoop feeds server messages into the projection.
func (b *bot) readLoop() error {
	welcomed := false
	for {
		_, raw, err := b.ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading: %w", err)
		}

		var msg gateway.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("malformed message", "error", err)
			continue
		}

		switch msg.Type {
		case gateway.MessageWelcome:
			var w gateway.Welcome
			if err := json.Unmarshal(msg.Payload, &w); err != nil {
				return fmt.Errorf("decoding welcome: %w", err)
			}
			b.view.Reset(w.Actors)
			slog.Info("welcome", "connection", w.ConnectionID, "actor", w.ActorID, "actors", len(w.Actors), "skills", len(w.Skills))
			if !welcomed {
				welcomed = true
				close(b.ready)
			}
		case gateway.MessageEvent:
			ev, err := gateway.DecodeEvent(msg.Payload)
			if err != nil {
				slog.Debug("event dropped", "error", err)
				continue
			}
			b.view.Apply(ev)
			b.logEvent(ev)
		}
	}
}

func (b *bot) logEvent(ev event.Event) {
	if ev.ActorID != b.view.Self() {
		return
	}
	switch pl := ev.Payload.(type) {
	case event.ActionCompleted:
		slog.Debug("action completed", "action", pl.Action, "reason", pl.Reason)
	case event.Died:
		slog.Info("died", "killer", pl.KillerID, "skill", pl.SkillID, "respawn_at", pl.RespawnAt)
	case event.Respawned:
		slog.Info("respawned", "x", pl.X, "y", pl.Y)
	}
}

// thinkLoop picks one request per interval.
func (b *bot) thinkLoop(ctx context.Context, interval time.Duration) error {
	select {
	case <-ctx.Done():
		return nil
	case <-b.ready:
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			req, ok := b.decide(now)
			if !ok {
				continue
			}
			if err := b.ws.WriteJSON(req); err != nil {
				return fmt.Errorf("sending request: %w", err)
			}
			slog.Debug("request sent", "kind", req.Kind, "target", req.Target, "skill", req.Skill)
		}
	}
}

// decide returns the next request, or false to keep the current action.
func (b *bot) decide(now time.Time) (gateway.Request, bool) {
	self, ok := b.view.Snapshot(b.view.Self())
	if !ok || !self.Alive || self.Stunned {
		return gateway.Request{}, false
	}
	// a cast in progress is never superseded by the bot
	if self.Action == model.ActionCasting {
		return gateway.Request{}, false
	}

	if req, ok := b.selfCare(now, self); ok {
		return req, true
	}

	target, ok := b.view.NearestHostile()
	if !ok {
		return gateway.Request{}, false
	}

	for _, id := range self.Kit.Skills {
		sk, ok := b.registry.Get(id)
		if !ok {
			continue
		}
		def := sk.Definition()
		if def.Hostility == data.HostileAllies || !def.Targeting.NeedsRange() || def.Targeting == data.TargetGroundPoint {
			continue
		}

		req := gateway.Request{Kind: "cast", Skill: id}
		tgt := skill.Target{ActorID: target.ID}
		if def.Targeting == data.TargetAreaAtPoint {
			loc := target.Position
			tgt = skill.Target{Point: &loc}
			req.Point = &gateway.Point{X: loc.X, Y: loc.Y, Z: loc.Z}
		} else {
			req.Target = target.ID
		}

		// out of range is fine: the authority walks the caster in
		if err := b.view.CanCast(now, id, tgt); err == nil || errors.Is(err, skill.ErrOutOfRange) {
			return req, true
		}
	}

	if self.Action == model.ActionAttacking {
		return gateway.Request{}, false
	}
	return gateway.Request{Kind: "attack", Target: target.ID}, true
}

// selfCare heals or cleanses the bot when it is low on health.
func (b *bot) selfCare(now time.Time, self model.ActorSnapshot) (gateway.Request, bool) {
	low := self.MaxHealth > 0 && float64(self.Health) < healThreshold*float64(self.MaxHealth)

	for _, id := range self.Kit.Skills {
		sk, ok := b.registry.Get(id)
		if !ok || !low {
			continue
		}
		switch sk.Definition().Behavior {
		case "Mend", "Purify":
			if b.view.CanCast(now, id, skill.Target{}) == nil {
				return gateway.Request{Kind: "cast", Skill: id}, true
			}
		}
	}
	return gateway.Request{}, false
}
