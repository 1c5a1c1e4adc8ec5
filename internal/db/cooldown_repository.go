package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/arena/internal/game/cooldown"
)

// globalSkillID is the row that stores the global cooldown timestamp.
const globalSkillID = 0

// CooldownRepository хранит skill runtime state между despawn/spawn,
// чтобы переподключение не сбрасывало кулдауны.
type CooldownRepository struct {
	db *pgxpool.Pool
}

// NewCooldownRepository создаёт новый CooldownRepository.
func NewCooldownRepository(db *pgxpool.Pool) *CooldownRepository {
	return &CooldownRepository{db: db}
}

// Load returns the saved state of an actor. found is false when nothing was saved.
func (r *CooldownRepository) Load(ctx context.Context, actorID uint32) (cooldown.State, bool, error) {
	query := `
		SELECT skill_id, last_use
		FROM actor_cooldowns
		WHERE actor_id = $1
		ORDER BY skill_id
	`

	rows, err := r.db.Query(ctx, query, int64(actorID))
	if err != nil {
		return cooldown.State{}, false, fmt.Errorf("querying cooldowns for actor %d: %w", actorID, err)
	}
	defer rows.Close()

	state := cooldown.State{Skills: make(map[int32]time.Time)}
	found := false
	for rows.Next() {
		var (
			skillID int32
			lastUse time.Time
		)
		if err := rows.Scan(&skillID, &lastUse); err != nil {
			return cooldown.State{}, false, fmt.Errorf("scanning cooldown row: %w", err)
		}
		found = true
		if skillID == globalSkillID {
			state.Global = lastUse
			continue
		}
		state.Skills[skillID] = lastUse
	}

	if err := rows.Err(); err != nil {
		return cooldown.State{}, false, fmt.Errorf("iterating cooldown rows: %w", err)
	}

	return state, found, nil
}

// Save replaces the saved state of an actor in one transaction.
// Never-used skills (zero time) are not stored.
func (r *CooldownRepository) Save(ctx context.Context, actorID uint32, s cooldown.State) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "actor", actorID, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM actor_cooldowns WHERE actor_id = $1`, int64(actorID)); err != nil {
		return fmt.Errorf("deleting cooldowns of actor %d: %w", actorID, err)
	}

	batch := &pgx.Batch{}
	insert := `INSERT INTO actor_cooldowns (actor_id, skill_id, last_use) VALUES ($1, $2, $3)`
	for skillID, last := range s.Skills {
		if last.IsZero() {
			continue
		}
		batch.Queue(insert, int64(actorID), skillID, last)
	}
	if !s.Global.IsZero() {
		batch.Queue(insert, int64(actorID), int32(globalSkillID), s.Global)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting cooldowns of actor %d: %w", actorID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing cooldowns of actor %d: %w", actorID, err)
	}
	return nil
}

// Delete drops the saved state of an actor.
func (r *CooldownRepository) Delete(ctx context.Context, actorID uint32) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM actor_cooldowns WHERE actor_id = $1`, int64(actorID)); err != nil {
		return fmt.Errorf("deleting cooldowns of actor %d: %w", actorID, err)
	}
	return nil
}
