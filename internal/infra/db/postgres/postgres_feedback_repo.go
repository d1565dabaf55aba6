// File: internal/infra/db/postgres/postgres_feedback_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
)

var _ repository.FeedbackRepository = (*FeedbackRepo)(nil)

type FeedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

func (r *FeedbackRepo) Save(ctx context.Context, qx repository.Tx, entry *model.Feedback) error {
	const q = `
INSERT INTO feedback (id, user_id, rating, comment, date)
VALUES ($1,$2,$3,$4,$5);`
	if _, err := pick(r.pool, qx).Exec(ctx, q, entry.ID, entry.UserID, entry.Rating, entry.Comment, entry.Date); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepo) FindAll(ctx context.Context, qx repository.Tx) ([]*model.Feedback, error) {
	const q = `SELECT id, user_id, rating, comment, date FROM feedback ORDER BY date DESC;`
	rows, err := pick(r.pool, qx).Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []*model.Feedback
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Rating, &f.Comment, &f.Date); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (r *FeedbackRepo) DeleteAllByUser(ctx context.Context, qx repository.Tx, userID string) error {
	const q = `DELETE FROM feedback WHERE user_id=$1;`
	if _, err := pick(r.pool, qx).Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return nil
}
