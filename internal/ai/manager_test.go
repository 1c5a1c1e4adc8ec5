package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/udisondev/arena/internal/game/event"
)

type countingController struct {
	intention Intention
	ticks     atomic.Int32
	damage    atomic.Int32
	attacker  atomic.Uint32
}

func (c *countingController) Start() { c.intention = IntentionActive }
func (c *countingController) Stop() { c.intention = IntentionIdle }
func (c *countingController) SetIntention(i Intention) { c.intention = i }
func (c *countingController) CurrentIntention() Intention { return c.intention }
func (c *countingController) Tick(time.Time) { c.ticks.Add(1) }
func (c *countingController) NotifyDamage(_ time.Time, attackerID uint32, damage int32) {
	c.attacker.Store(attackerID)
	c.damage.Add(damage)
}

func TestTickManager_RegisterUnregister(t *testing.T) {
	mgr := NewTickManager(time.Second)
	c := &countingController{}

	mgr.Register(100, c)
	mgr.Register(100, c) // re-register replaces

	if mgr.Count() != 1 {
		t.Errorf("Count() after Register() = %d, want 1", mgr.Count())
	}

	controller, err := mgr.GetController(100)
	if err != nil {
		t.Fatalf("GetController() error = %v", err)
	}
	if controller.CurrentIntention() != IntentionActive {
		t.Errorf("CurrentIntention() = %v, want ACTIVE", controller.CurrentIntention())
	}

	mgr.Unregister(100)
	mgr.Unregister(100)

	if mgr.Count() != 0 {
		t.Errorf("Count() after Unregister() = %d, want 0", mgr.Count())
	}
	if c.CurrentIntention() != IntentionIdle {
		t.Errorf("CurrentIntention() after Unregister() = %v, want IDLE", c.CurrentIntention())
	}
	if _, err := mgr.GetController(100); err == nil {
		t.Error("GetController() after Unregister() should return error")
	}
}

func TestTickManager_Start(t *testing.T) {
	mgr := NewTickManager(10 * time.Millisecond)
	c := &countingController{}
	mgr.Register(100, c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- mgr.Start(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after cancel")
	}

	if got := c.ticks.Load(); got < 3 {
		t.Errorf("ticks = %d, want at least 3", got)
	}
}

func TestTickManager_Notify(t *testing.T) {
	mgr := NewTickManager(time.Second)
	c := &countingController{}
	mgr.Register(100, c)

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ev   event.Event
	}{
		{"damage", event.New(event.KindHealthChanged, 100, at, event.HealthChanged{Current: 580, Max: 600, Delta: -20, SourceID: 1})},
		{"heal", event.New(event.KindHealthChanged, 100, at, event.HealthChanged{Current: 600, Max: 600, Delta: 20, SourceID: 2})},
		{"poison without attacker", event.New(event.KindHealthChanged, 100, at, event.HealthChanged{Current: 585, Max: 600, Delta: -15})},
		{"other actor", event.New(event.KindHealthChanged, 7, at, event.HealthChanged{Current: 1, Max: 600, Delta: -99, SourceID: 1})},
		{"other kind", event.New(event.KindManaChanged, 100, at, event.ManaChanged{Current: 1, Max: 200})},
	}
	for _, tt := range tests {
		mgr.Notify(tt.ev)
	}

	if got := c.damage.Load(); got != 20 {
		t.Errorf("damage = %d, want 20", got)
	}
	if got := c.attacker.Load(); got != 1 {
		t.Errorf("attacker = %d, want 1", got)
	}
}

func TestTickManager_Observe(t *testing.T) {
	mgr := NewTickManager(time.Second)
	c := &countingController{}
	mgr.Register(100, c)

	bus := event.NewBus(8)
	sub := bus.Subscribe(nil)

	done := make(chan error, 1)
	go func() {
		done <- mgr.Observe(context.Background(), sub)
	}()

	bus.Publish(event.New(event.KindHealthChanged, 100, time.Now(), event.HealthChanged{Delta: -40, SourceID: 3}))
	bus.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Observe() error = %v, want nil on closed subscription", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Observe() did not return after bus close")
	}
	if got := c.damage.Load(); got != 40 {
		t.Errorf("damage = %d, want 40", got)
	}
}
