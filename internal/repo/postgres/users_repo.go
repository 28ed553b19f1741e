package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/losclub/community-surveys/internal/domain"
)

type UsersRepo interface {
	// Create inserts a user with the default account type.
	Create(ctx context.Context, email, username string) (*domain.User, error)
	// FindByEmail returns (nil, nil) when no user exists for the email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

const userCols = `email, id, username, account_type, created_at`

func (r *UsersRepoImpl) Create(ctx context.Context, email, username string) (*domain.User, error) {
	const q = `
INSERT INTO users (email, username)
VALUES ($1, $2)
RETURNING ` + userCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, email, username).Scan(
		&u.Email, &u.ID, &u.Username, &u.AccountType, &u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("user already exists: %w", domain.ErrConflict)
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&u.Email, &u.ID, &u.Username, &u.AccountType, &u.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var _ UsersRepo = (*UsersRepoImpl)(nil)
