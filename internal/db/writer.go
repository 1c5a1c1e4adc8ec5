package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/arena/internal/game/cooldown"
	"github.com/udisondev/arena/internal/model"
)

// job is one queued write.
type job struct {
	actorID   uint32
	cooldowns *cooldown.State
	death     *model.DeathRecord
}

// Writer moves persistence off the authority tick: the session hands it
// records without blocking, Run writes them to PostgreSQL.
type Writer struct {
	cooldowns *CooldownRepository
	deaths    *DeathRepository
	jobs      chan job
	timeout   time.Duration
	dropped   atomic.Uint64
}

// NewWriter creates a writer with a queue of the given capacity.
func NewWriter(cooldowns *CooldownRepository, deaths *DeathRepository, queue int) *Writer {
	if queue < 1 {
		queue = 1
	}
	return &Writer{
		cooldowns: cooldowns,
		deaths:    deaths,
		jobs:      make(chan job, queue),
		timeout:   5 * time.Second,
	}
}

// SaveCooldowns queues the runtime state of an actor.
func (w *Writer) SaveCooldowns(actorID uint32, s cooldown.State) {
	w.enqueue(job{actorID: actorID, cooldowns: &s})
}

// RecordDeath queues a death log entry.
func (w *Writer) RecordDeath(d model.DeathRecord) {
	w.enqueue(job{actorID: d.VictimID, death: &d})
}

func (w *Writer) enqueue(j job) {
	select {
	case w.jobs <- j:
	default:
		n := w.dropped.Add(1)
		slog.Warn("persistence queue full, record dropped", "actor", j.actorID, "dropped", n)
	}
}

// Dropped returns how many records were lost to a full queue.
func (w *Writer) Dropped() uint64 {
	return w.dropped.Load()
}

// Pending returns the number of queued records.
func (w *Writer) Pending() int {
	return len(w.jobs)
}

// Run writes queued records until ctx is cancelled.
// Records still queued at that point are left for Drain.
func (w *Writer) Run(ctx context.Context) error {
	slog.Info("persistence writer started", "queue", cap(w.jobs))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-w.jobs:
			// a write in flight finishes even if ctx is cancelled meanwhile
			w.write(context.WithoutCancel(ctx), j)
		}
	}
}

// Drain synchronously writes every queued record. Used at shutdown.
func (w *Writer) Drain(ctx context.Context) {
	n := 0
	for {
		select {
		case j := <-w.jobs:
			w.write(ctx, j)
			n++
		default:
			slog.Info("persistence writer drained", "records", n)
			return
		}
	}
}

func (w *Writer) write(ctx context.Context, j job) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	switch {
	case j.cooldowns != nil:
		if err := w.cooldowns.Save(ctx, j.actorID, *j.cooldowns); err != nil {
			slog.Error("saving cooldowns", "actor", j.actorID, "error", err)
		}
	case j.death != nil:
		if err := w.deaths.Insert(ctx, *j.death); err != nil {
			slog.Error("recording death", "actor", j.actorID, "error", err)
		}
	}
}
