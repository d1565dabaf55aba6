// File: internal/infra/db/postgres/postgres_mood_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
)

var _ repository.MoodRepository = (*MoodRepo)(nil)

type MoodRepo struct {
	pool *pgxpool.Pool
}

func NewMoodRepo(pool *pgxpool.Pool) *MoodRepo {
	return &MoodRepo{pool: pool}
}

func (r *MoodRepo) Save(ctx context.Context, qx repository.Tx, entry *model.MoodEntry) error {
	const q = `
INSERT INTO mood_entries (user_id, mood, date, note)
VALUES ($1,$2,$3,$4);`
	if _, err := pick(r.pool, qx).Exec(ctx, q, entry.UserID, entry.Mood, entry.Date, entry.Note); err != nil {
		return fmt.Errorf("save mood: %w", err)
	}
	return nil
}

func (r *MoodRepo) FindAllByUser(ctx context.Context, qx repository.Tx, userID string) ([]*model.MoodEntry, error) {
	const q = `SELECT user_id, mood, date, note FROM mood_entries WHERE user_id=$1 ORDER BY date ASC;`
	rows, err := pick(r.pool, qx).Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query moods: %w", err)
	}
	defer rows.Close()

	var out []*model.MoodEntry
	for rows.Next() {
		var e model.MoodEntry
		if err := rows.Scan(&e.UserID, &e.Mood, &e.Date, &e.Note); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *MoodRepo) DeleteAllByUser(ctx context.Context, qx repository.Tx, userID string) error {
	const q = `DELETE FROM mood_entries WHERE user_id=$1;`
	if _, err := pick(r.pool, qx).Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("delete moods: %w", err)
	}
	return nil
}
