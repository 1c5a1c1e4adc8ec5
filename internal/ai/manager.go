package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/arena/internal/game/event"
)

// TickManager manages AI ticks for all registered monsters
type TickManager struct {
	controllers     sync.Map // map[uint32]Controller, actorID → controller
	interval        time.Duration
	controllerCount atomic.Int32 // cached count of controllers (O(1) access)
}

// NewTickManager creates new AI tick manager
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		interval = time.Second
	}
	return &TickManager{interval: interval}
}

// Register registers AI controller for a monster
func (m *TickManager) Register(actorID uint32, controller Controller) {
	if _, loaded := m.controllers.Swap(actorID, controller); !loaded {
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"actor", actorID,
		"intention", controller.CurrentIntention())
}

// Unregister unregisters AI controller
func (m *TickManager) Unregister(actorID uint32) {
	value, ok := m.controllers.LoadAndDelete(actorID)
	if !ok {
		return
	}

	m.controllerCount.Add(-1)

	controller := value.(Controller)
	controller.Stop()

	slog.Debug("AI controller unregistered", "actor", actorID)
}

// Start starts AI tick loop (blocks until context is canceled)
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("AI tick manager started", "interval", m.interval, "controllers", m.Count())

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping")
			return ctx.Err()

		case now := <-ticker.C:
			m.tickAll(now)
		}
	}
}

// Observe routes damage notifications to the controllers of the victims.
// Runs until sub is closed or ctx is cancelled.
func (m *TickManager) Observe(ctx context.Context, sub *event.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			m.Notify(ev)
		}
	}
}

// Notify delivers one event: a HealthChanged loss caused by another actor.
func (m *TickManager) Notify(ev event.Event) {
	hc, ok := ev.Payload.(event.HealthChanged)
	if !ok || hc.Delta >= 0 || hc.SourceID == 0 || hc.SourceID == ev.ActorID {
		return
	}
	value, ok := m.controllers.Load(ev.ActorID)
	if !ok {
		return
	}
	if l, ok := value.(DamageListener); ok {
		l.NotifyDamage(ev.At, hc.SourceID, -hc.Delta)
	}
}

// tickAll ticks all registered controllers
func (m *TickManager) tickAll(now time.Time) {
	count := 0

	m.controllers.Range(func(key, value any) bool {
		controller := value.(Controller)
		controller.Tick(now)
		count++
		return true
	})

	if count > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "controllers", count)
	}
}

// Count returns number of registered controllers (O(1) cached count)
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns controller for a monster
func (m *TickManager) GetController(actorID uint32) (Controller, error) {
	value, ok := m.controllers.Load(actorID)
	if !ok {
		return nil, fmt.Errorf("controller not found for actor %d", actorID)
	}
	return value.(Controller), nil
}
