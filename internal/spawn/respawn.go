package spawn

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// RespawnTask is a scheduled revival of a dead actor.
type RespawnTask struct {
	ActorID     uint32
	RespawnTime time.Time
}

// RespawnScheduler keeps the pending respawns. The authority tick polls
// Due once per tick and revives whatever it returns.
type RespawnScheduler struct {
	mu    sync.RWMutex
	tasks map[uint32]RespawnTask // actorID → task
}

// NewRespawnScheduler creates an empty scheduler.
func NewRespawnScheduler() *RespawnScheduler {
	return &RespawnScheduler{
		tasks: make(map[uint32]RespawnTask),
	}
}

// ScheduleRespawn schedules a respawn at the given time.
// A second schedule for the same actor replaces the first.
func (s *RespawnScheduler) ScheduleRespawn(actorID uint32, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[actorID] = RespawnTask{ActorID: actorID, RespawnTime: at}

	slog.Debug("respawn scheduled",
		"actor", actorID,
		"respawnTime", at.Format(time.RFC3339Nano))
}

// CancelRespawn drops the scheduled respawn, if any.
func (s *RespawnScheduler) CancelRespawn(actorID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[actorID]; !ok {
		return
	}
	delete(s.tasks, actorID)
	slog.Debug("respawn cancelled", "actor", actorID)
}

// Due removes and returns the tasks whose time has come, oldest first
// (ties broken by actor ID).
func (s *RespawnScheduler) Due(now time.Time) []RespawnTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []RespawnTask
	for id, task := range s.tasks {
		if !now.Before(task.RespawnTime) {
			due = append(due, task)
			delete(s.tasks, id)
		}
	}

	slices.SortFunc(due, func(a, b RespawnTask) int {
		if c := a.RespawnTime.Compare(b.RespawnTime); c != 0 {
			return c
		}
		return int(a.ActorID) - int(b.ActorID)
	})
	return due
}

// TaskCount returns number of scheduled respawn tasks
func (s *RespawnScheduler) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// GetTask returns the scheduled respawn of an actor.
func (s *RespawnScheduler) GetTask(actorID uint32) (RespawnTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[actorID]
	return task, ok
}
