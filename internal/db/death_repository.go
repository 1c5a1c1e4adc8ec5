package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/arena/internal/model"
)

// DeathRepository пишет журнал смертей для статистики матча.
type DeathRepository struct {
	db *pgxpool.Pool
}

// NewDeathRepository создаёт новый DeathRepository.
func NewDeathRepository(db *pgxpool.Pool) *DeathRepository {
	return &DeathRepository{db: db}
}

// Insert appends one death.
func (r *DeathRepository) Insert(ctx context.Context, d model.DeathRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO deaths (victim_id, killer_id, skill_id, died_at) VALUES ($1, $2, $3, $4)`,
		int64(d.VictimID), int64(d.KillerID), d.SkillID, d.At,
	)
	if err != nil {
		return fmt.Errorf("inserting death of actor %d: %w", d.VictimID, err)
	}
	return nil
}

// ListByVictim returns the deaths of an actor since the given time, oldest first.
func (r *DeathRepository) ListByVictim(ctx context.Context, victimID uint32, since time.Time) ([]model.DeathRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT victim_id, killer_id, skill_id, died_at
		FROM deaths
		WHERE victim_id = $1 AND died_at >= $2
		ORDER BY died_at, id
	`, int64(victimID), since)
	if err != nil {
		return nil, fmt.Errorf("querying deaths of actor %d: %w", victimID, err)
	}
	defer rows.Close()

	var out []model.DeathRecord
	for rows.Next() {
		var (
			victim, killer int64
			rec            model.DeathRecord
		)
		if err := rows.Scan(&victim, &killer, &rec.SkillID, &rec.At); err != nil {
			return nil, fmt.Errorf("scanning death row: %w", err)
		}
		rec.VictimID = uint32(victim)
		rec.KillerID = uint32(killer)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating death rows: %w", err)
	}
	return out, nil
}

// KillCounts returns the number of kills per killer. Environment deaths are excluded.
func (r *DeathRepository) KillCounts(ctx context.Context) (map[uint32]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT killer_id, count(*)
		FROM deaths
		WHERE killer_id <> 0
		GROUP BY killer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying kill counts: %w", err)
	}
	defer rows.Close()

	out := make(map[uint32]int)
	for rows.Next() {
		var killer, n int64
		if err := rows.Scan(&killer, &n); err != nil {
			return nil, fmt.Errorf("scanning kill count: %w", err)
		}
		out[uint32(killer)] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kill counts: %w", err)
	}
	return out, nil
}
