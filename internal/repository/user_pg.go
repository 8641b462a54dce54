package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var ErrUserNotFound = errors.New("user not found")

// PostgresUserRepo reads and adjusts the forum's user/wallet rows. The schema
// is owned by the forum service; this repo only touches the columns the
// economy engine needs.
type PostgresUserRepo struct {
	db *sqlx.DB
}

func NewPostgresUserRepo(db *sqlx.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		`SELECT id, username, role, xp, balance_dgt, created_at FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) GetBySessionToken(ctx context.Context, token string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		`SELECT u.id, u.username, u.role, u.xp, u.balance_dgt, u.created_at
		   FROM users u JOIN sessions s ON s.user_id = u.id
		  WHERE s.token = $1 AND s.expires_at > now()`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AdjustBalance applies a signed delta and returns the new balance. The
// WHERE clause refuses to drive a balance negative so concurrent spends
// cannot overdraw.
func (r *PostgresUserRepo) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance,
		`UPDATE users SET balance_dgt = balance_dgt + $2
		  WHERE id = $1 AND balance_dgt + $2 >= 0
		RETURNING balance_dgt`, id, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *PostgresUserRepo) AddXP(ctx context.Context, id string, xp int) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`UPDATE users SET xp = xp + $2 WHERE id = $1 RETURNING xp`, id, xp)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}
