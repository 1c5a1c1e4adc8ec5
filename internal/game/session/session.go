package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/arena/internal/game/action"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/game/cooldown"
	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/spawn"
	"github.com/udisondev/arena/internal/world"
)

var (
	// ErrUnknownActor is returned for operations on an actor that is not in the arena.
	ErrUnknownActor = errors.New("unknown actor")
	// ErrDuplicateActor is returned when spawning an ID that is already taken.
	ErrDuplicateActor = errors.New("actor already spawned")
)

// Config holds the authority constants.
type Config struct {
	TickInterval     time.Duration
	SweepInterval    time.Duration
	GlobalCooldown   time.Duration
	Cast             skill.CastConfig
	StoppingDistance float64
	RespawnDelay     time.Duration
	CritMultiplier   float64
}

// SpawnPoints tells where a team enters the arena.
type SpawnPoints interface {
	SpawnPoint(team model.Team) model.Location
}

// Recorder receives data worth keeping past the process lifetime.
// Implementations must not block: they are called from the tick.
type Recorder interface {
	SaveCooldowns(actorID uint32, s cooldown.State)
	RecordDeath(d model.DeathRecord)
}

// SpawnParams describes an actor entering the arena.
type SpawnParams struct {
	ID    uint32
	Name  string
	Class string
	Team  model.Team
	// Cooldowns restores persisted skill runtime state; nil = fresh.
	Cooldowns *cooldown.State
}

// Session is the arena authority. One goroutine (Run, or the caller of Tick)
// owns every actor, cooldown and control effect; other goroutines talk to it
// through Submit and read the published snapshots.
type Session struct {
	cfg      Config
	registry *skill.Registry
	points   SpawnPoints
	bus      *event.Bus
	recorder Recorder

	world     *world.World
	cooldowns *cooldown.Tracker
	effects   *effect.Manager
	resolver  *combat.Resolver
	casts     *skill.CastManager
	respawns  *spawn.RespawnScheduler
	outbox    *event.Outbox
	deps      *action.Deps

	machines map[uint32]*action.Machine
	navs     map[uint32]*action.LinearNavigator

	lastTick  time.Time
	lastSweep time.Time

	inboxMu sync.Mutex
	inbox   []model.ActionRequest

	viewMu sync.RWMutex
	views  map[uint32]model.ActorSnapshot
}

// New creates a session. bus receives every event after each tick.
func New(cfg Config, registry *skill.Registry, points SpawnPoints, bus *event.Bus) *Session {
	s := &Session{
		cfg:       cfg,
		registry:  registry,
		points:    points,
		bus:       bus,
		world:     world.New(),
		cooldowns: cooldown.NewTracker(cfg.GlobalCooldown),
		respawns:  spawn.NewRespawnScheduler(),
		outbox:    event.NewOutbox(),
		machines:  make(map[uint32]*action.Machine),
		navs:      make(map[uint32]*action.LinearNavigator),
		views:     make(map[uint32]model.ActorSnapshot),
	}

	s.effects = effect.NewManager(s.onEffectChanged)
	s.resolver = combat.NewResolver(combat.Config{
		CritMultiplier: cfg.CritMultiplier,
		RespawnDelay:   cfg.RespawnDelay,
	}, s.respawns, s.outbox)
	s.resolver.SetDeathFunc(s.onDeath)
	s.casts = skill.NewCastManager(cfg.Cast, registry, s.cooldowns, s.effects, s.resolver, s.world, s.outbox)
	s.deps = &action.Deps{
		Casts:            s.casts,
		Effects:          s.effects,
		World:            s.world,
		Emitter:          s.outbox,
		StoppingDistance: cfg.StoppingDistance,
	}
	return s
}

// SetRecorder attaches persistence. Must be called before Run.
func (s *Session) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetCritRoll replaces the crit roll source (tests).
func (s *Session) SetCritRoll(fn func() float64) {
	s.resolver.SetRoll(fn)
}

// Registry returns the skill registry the session validates against.
func (s *Session) Registry() *skill.Registry {
	return s.registry
}

// Spawn puts an actor of the given class into the arena at its team spawn point.
// Authority goroutine only (or before Run).
func (s *Session) Spawn(now time.Time, p SpawnParams) (*model.Actor, error) {
	if _, ok := s.world.Actor(p.ID); ok {
		return nil, fmt.Errorf("spawning %d: %w", p.ID, ErrDuplicateActor)
	}
	ck, kit, err := s.registry.Kit(p.Class)
	if err != nil {
		return nil, fmt.Errorf("spawning %d: %w", p.ID, err)
	}

	name := p.Name
	if name == "" {
		name = fmt.Sprintf("%s-%d", p.Class, p.ID)
	}
	a := model.NewActor(p.ID, name, p.Team, s.points.SpawnPoint(p.Team), ck.MaxHP, ck.MaxMP, ck.Speed)
	a.SetClass(ck.Name)
	a.SetPower(ck.AttackPower, ck.SpellPower)
	a.SetKit(kit)

	if err := s.world.Add(a); err != nil {
		return nil, fmt.Errorf("spawning %d: %w", p.ID, err)
	}

	if p.Cooldowns != nil {
		s.cooldowns.Restore(p.ID, *p.Cooldowns)
	}
	s.cooldowns.Assign(p.ID, kit.All())

	nav := action.NewLinearNavigator(a, s.world.Relocate)
	s.navs[p.ID] = nav
	s.machines[p.ID] = action.NewMachine(a, nav, s.deps)

	s.outbox.Touch(p.ID)
	s.publishView(a)

	slog.Info("actor spawned",
		"actor", p.ID,
		"name", name,
		"class", ck.Name,
		"team", p.Team,
		"restoredCooldowns", p.Cooldowns != nil)
	return a, nil
}

// Despawn removes an actor, saving its cooldowns first.
// Authority goroutine only.
func (s *Session) Despawn(now time.Time, id uint32) error {
	a, ok := s.world.Actor(id)
	if !ok {
		return fmt.Errorf("despawning %d: %w", id, ErrUnknownActor)
	}

	if m := s.machines[id]; m != nil {
		m.Interrupt(now, action.ErrInterrupted)
	}
	if s.recorder != nil {
		s.recorder.SaveCooldowns(id, s.cooldowns.Snapshot(id))
	}

	s.respawns.CancelRespawn(id)
	s.effects.Forget(id)
	s.cooldowns.Forget(id)
	s.world.Remove(id)
	delete(s.machines, id)
	delete(s.navs, id)

	s.viewMu.Lock()
	delete(s.views, id)
	s.viewMu.Unlock()

	s.outbox.Emit(event.New(event.KindDespawned, id, now, nil))
	slog.Info("actor despawned", "actor", id, "name", a.Name())
	return nil
}

// Submit queues a client request. Safe for concurrent use.
// Requests are processed at the start of the next tick in arrival order.
// There is no reply: rejections are only logged.
func (s *Session) Submit(req model.ActionRequest) {
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, req)
	s.inboxMu.Unlock()
}

// SaveAll hands the cooldowns of every actor to the recorder (shutdown).
func (s *Session) SaveAll() {
	if s.recorder == nil {
		return
	}
	for _, id := range s.world.IDs() {
		s.recorder.SaveCooldowns(id, s.cooldowns.Snapshot(id))
	}
}

func (s *Session) drainInbox() []model.ActionRequest {
	s.inboxMu.Lock()
	defer s.inboxMu.Unlock()

	reqs := s.inbox
	s.inbox = nil
	return reqs
}
