package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/looplab/fsm"

	"github.com/udisondev/arena/internal/game/effect"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
)

// FSM states and events.
const (
	stateIdle      = "idle"
	stateMoving    = "moving"
	stateAttacking = "attacking"
	stateCasting   = "casting"

	eventMove      = "move"
	eventAttack    = "attack"
	eventCast      = "cast"
	eventFinish    = "finish"
	eventInterrupt = "interrupt"
)

var stateNames = map[string]model.ActionState{
	stateIdle:      model.ActionIdle,
	stateMoving:    model.ActionMoving,
	stateAttacking: model.ActionAttacking,
	stateCasting:   model.ActionCasting,
}

// Deps are the session-owned collaborators shared by every machine.
type Deps struct {
	Casts   *skill.CastManager
	Effects *effect.Manager
	World   skill.Finder
	Emitter event.Emitter
	// StoppingDistance is how close a move has to get to count as arrived.
	StoppingDistance float64
}

// Machine is the per-actor action state machine: Idle, Moving, Attacking, CastingSkill.
//
// Dead and stunned actors reject every transition; silenced actors reject casts.
// A new request supersedes the current action, discarding non-committed work.
//
// Not thread-safe: owned by the authority tick.
type Machine struct {
	actor *model.Actor
	nav   Navigator
	deps  *Deps
	fsm   *fsm.FSM
	task  task
}

// NewMachine creates an idle machine for actor.
func NewMachine(actor *model.Actor, nav Navigator, deps *Deps) *Machine {
	m := &Machine{actor: actor, nav: nav, deps: deps}

	active := []string{stateMoving, stateAttacking, stateCasting}
	all := append([]string{stateIdle}, active...)

	m.fsm = fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventMove, Src: all, Dst: stateMoving},
			{Name: eventAttack, Src: all, Dst: stateAttacking},
			{Name: eventCast, Src: all, Dst: stateCasting},
			{Name: eventFinish, Src: active, Dst: stateIdle},
			{Name: eventInterrupt, Src: active, Dst: stateIdle},
		},
		fsm.Callbacks{
			"before_" + eventMove:   m.guardAction,
			"before_" + eventAttack: m.guardAction,
			"before_" + eventCast:   m.guardCast,
		},
	)
	actor.SetAction(model.ActionIdle)
	return m
}

// guardAction blocks every transition for dead or stunned actors.
func (m *Machine) guardAction(_ context.Context, e *fsm.Event) {
	if m.actor.IsDead() {
		e.Cancel(skill.ErrDead)
		return
	}
	if m.deps.Effects.IsStunned(m.actor.ID()) {
		e.Cancel(skill.ErrStunned)
	}
}

// guardCast additionally blocks casts for silenced actors.
func (m *Machine) guardCast(ctx context.Context, e *fsm.Event) {
	m.guardAction(ctx, e)
	if e.Err != nil {
		return
	}
	if m.deps.Effects.IsSilenced(m.actor.ID()) {
		e.Cancel(skill.ErrSilenced)
	}
}

// Actor returns the driven actor.
func (m *Machine) Actor() *model.Actor { return m.actor }

// Navigator returns the movement collaborator.
func (m *Machine) Navigator() Navigator { return m.nav }

// Current returns the current action state.
func (m *Machine) Current() model.ActionState {
	return stateNames[m.fsm.Current()]
}

// PendingCast returns the in-flight cast waiting for its commit point, nil if none.
func (m *Machine) PendingCast() *skill.PendingCast {
	if m.task == nil {
		return nil
	}
	return m.task.pending()
}

// Request starts the requested action, superseding the current one.
// A rejected request changes nothing.
func (m *Machine) Request(now time.Time, req model.ActionRequest) error {
	if req.Kind == model.RequestStop {
		m.Interrupt(now, ErrStopped)
		return nil
	}

	next, evt, err := m.prepare(now, req)
	if err != nil {
		return err
	}

	prev := m.Current()
	if err := m.fire(evt); err != nil {
		return err
	}

	if m.task != nil {
		m.task.abort(now, m, ErrSuperseded)
		m.complete(now, prev, reasonSuperseded)
	}
	m.nav.Stop()
	m.task = next
	m.sync(now, prev)

	next.start(now, m)
	m.poll(now)
	return nil
}

// prepare validates a request without side effects and builds its task.
func (m *Machine) prepare(now time.Time, req model.ActionRequest) (task, string, error) {
	casts := m.deps.Casts

	switch req.Kind {
	case model.RequestMove:
		if req.TargetPosition == nil {
			return nil, "", fmt.Errorf("move without destination: %w", ErrBadRequest)
		}
		return &moveTask{dest: *req.TargetPosition}, eventMove, nil

	case model.RequestAttack:
		if req.TargetActorID == 0 {
			return nil, "", fmt.Errorf("attack without target: %w", ErrBadRequest)
		}
		basic := m.actor.Kit().BasicAttack
		s, ok := casts.Registry().Get(basic)
		if basic == 0 || !ok {
			return nil, "", ErrNoBasicAttack
		}
		if err := casts.CheckState(m.actor, skill.UseBasicAttack); err != nil {
			return nil, "", err
		}
		if _, err := casts.ResolveTarget(m.actor, s.Definition(), skill.Target{ActorID: req.TargetActorID}); err != nil {
			return nil, "", err
		}
		return &attackTask{targetID: req.TargetActorID, skill: s}, eventAttack, nil

	case model.RequestCast:
		tgt := skill.Target{ActorID: req.TargetActorID, Point: req.TargetPosition}
		s, _, err := casts.Prevalidate(now, m.actor, req.SkillID, skill.UseCast, tgt)
		if err != nil {
			return nil, "", err
		}
		return &castTask{skill: s, target: tgt}, eventCast, nil

	default:
		return nil, "", fmt.Errorf("kind %d: %w", req.Kind, ErrBadRequest)
	}
}

// Interrupt aborts the current action and returns to Idle.
// Interrupts are never guarded: stun and death must always get through.
func (m *Machine) Interrupt(now time.Time, reason error) {
	if m.task == nil {
		return
	}

	prev := m.Current()
	t := m.task
	m.task = nil
	t.abort(now, m, reason)
	m.nav.Stop()

	if err := m.fire(eventInterrupt); err != nil {
		slog.Warn("interrupt transition failed", "actor", m.actor.ID(), "state", prev, "error", err)
	}

	label := reasonInterrupted
	if errors.Is(reason, ErrStopped) {
		label = reasonStopped
	}
	m.complete(now, prev, label)
	m.sync(now, prev)
}

// Tick re-checks the guards and polls the current task once.
func (m *Machine) Tick(now time.Time) {
	if m.task == nil {
		return
	}

	switch {
	case m.actor.IsDead():
		m.Interrupt(now, skill.ErrDead)
		return
	case m.deps.Effects.IsStunned(m.actor.ID()):
		m.Interrupt(now, skill.ErrStunned)
		return
	case m.Current() == model.ActionCasting && m.deps.Effects.IsSilenced(m.actor.ID()):
		m.Interrupt(now, skill.ErrSilenced)
		return
	}

	m.poll(now)
}

// poll advances the task and finishes the action when it is done.
func (m *Machine) poll(now time.Time) {
	t := m.task
	if t == nil {
		return
	}
	done, reason := t.poll(now, m)
	if m.task != t {
		// interrupted from inside the poll (e.g. a self-applied stun)
		return
	}
	if !done {
		return
	}

	prev := m.Current()
	m.task = nil
	m.nav.Stop()
	if err := m.fire(eventFinish); err != nil {
		slog.Warn("finish transition failed", "actor", m.actor.ID(), "state", prev, "error", err)
	}
	m.complete(now, prev, reason)
	m.sync(now, prev)
}

// fire runs an FSM event. A self transition (attack while attacking) is not an error.
func (m *Machine) fire(evt string) error {
	err := m.fsm.Event(context.Background(), evt)
	if err == nil {
		return nil
	}

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	var canceled fsm.CanceledError
	if errors.As(err, &canceled) && canceled.Err != nil {
		return canceled.Err
	}
	return fmt.Errorf("%s: %w", evt, err)
}

// sync mirrors the FSM state onto the actor and notifies on change.
func (m *Machine) sync(now time.Time, prev model.ActionState) {
	cur := m.Current()
	m.actor.SetAction(cur)
	if cur == prev {
		return
	}
	m.emit(event.New(event.KindActionChanged, m.actor.ID(), now, event.ActionChanged{
		From: prev.String(),
		To:   cur.String(),
	}))
}

func (m *Machine) complete(now time.Time, action model.ActionState, reason string) {
	slog.Debug("action completed", "actor", m.actor.ID(), "action", action, "reason", reason)
	m.emit(event.New(event.KindActionCompleted, m.actor.ID(), now, event.ActionCompleted{
		Action: action.String(),
		Reason: reason,
	}))
}

func (m *Machine) emit(ev event.Event) {
	if m.deps.Emitter != nil {
		m.deps.Emitter.Emit(ev)
	}
}
