// File: internal/infra/db/postgres/postgres_user_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `
id, full_name, email, password_hash, gender, birthdate, join_date, is_admin,
language, theme, two_factor, last_password_change`

func (r *UserRepo) Save(ctx context.Context, qx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, full_name, email, password_hash, gender, birthdate, join_date, is_admin,
  language, theme, two_factor, last_password_change
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  full_name=$2, email=$3, password_hash=$4, gender=$5, birthdate=$6, is_admin=$8,
  language=$9, theme=$10, two_factor=$11, last_password_change=$12;`
	_, err := pick(r.pool, qx).Exec(ctx, q,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.Gender, u.Birthdate, u.JoinDate, u.IsAdmin,
		u.Settings.Language, u.Settings.Theme, u.Security.TwoFactor, u.Security.LastPasswordChange)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, qx repository.Tx, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1;`
	return scanUser(pick(r.pool, qx).QueryRow(ctx, q, email))
}

func (r *UserRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1;`
	return scanUser(pick(r.pool, qx).QueryRow(ctx, q, id))
}

func (r *UserRepo) FindAll(ctx context.Context, qx repository.Tx) ([]*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY join_date ASC;`
	rows, err := pick(r.pool, qx).Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Delete(ctx context.Context, qx repository.Tx, id string) error {
	const q = `DELETE FROM users WHERE id=$1;`
	tag, err := pick(r.pool, qx).Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateSettings(ctx context.Context, qx repository.Tx, id string, settings model.Settings) error {
	const q = `UPDATE users SET language=$2, theme=$3 WHERE id=$1;`
	tag, err := pick(r.pool, qx).Exec(ctx, q, id, settings.Language, settings.Theme)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateSecurity(ctx context.Context, qx repository.Tx, id string, security model.Security) error {
	const q = `UPDATE users SET two_factor=$2, last_password_change=$3 WHERE id=$1;`
	tag, err := pick(r.pool, qx).Exec(ctx, q, id, security.TwoFactor, security.LastPasswordChange)
	if err != nil {
		return fmt.Errorf("update security: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, qx repository.Tx, email, passwordHash string, changedAt time.Time) error {
	const q = `UPDATE users SET password_hash=$2, last_password_change=$3 WHERE email=$1;`
	tag, err := pick(r.pool, qx).Exec(ctx, q, email, passwordHash, changedAt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Gender, &u.Birthdate, &u.JoinDate, &u.IsAdmin,
		&u.Settings.Language, &u.Settings.Theme, &u.Security.TwoFactor, &u.Security.LastPasswordChange)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
