package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/losclub/community-surveys/internal/domain"
)

// TokensRepo holds both credential tables: short-lived login tokens and
// long-lived sessions. Both are opaque random ids; revocation is a delete.
type TokensRepo interface {
	CreateLoginToken(ctx context.Context, id, userEmail string, expiresAt time.Time) error
	// ConsumeLoginToken atomically deletes the token and returns it, so two
	// concurrent verifications cannot both succeed. Returns (nil, nil) when
	// the token is unknown. The caller checks expiry on the returned row.
	ConsumeLoginToken(ctx context.Context, id string) (*domain.LoginToken, error)

	CreateSession(ctx context.Context, id, userEmail string, expiresAt time.Time) error
	// FindSession returns (nil, nil) when the session is unknown.
	FindSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type TokensRepoImpl struct{ pool *pgxpool.Pool }

func NewTokensRepo(pool *pgxpool.Pool) *TokensRepoImpl { return &TokensRepoImpl{pool: pool} }

func (r *TokensRepoImpl) CreateLoginToken(ctx context.Context, id, userEmail string, expiresAt time.Time) error {
	const q = `INSERT INTO login_tokens (id, user_email, expires_at) VALUES ($1, $2, $3)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, userEmail, expiresAt)
	return err
}

func (r *TokensRepoImpl) ConsumeLoginToken(ctx context.Context, id string) (*domain.LoginToken, error) {
	const q = `
DELETE FROM login_tokens
WHERE id = $1
RETURNING id, user_email, expires_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.LoginToken
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.UserEmail, &t.ExpiresAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokensRepoImpl) CreateSession(ctx context.Context, id, userEmail string, expiresAt time.Time) error {
	const q = `INSERT INTO sessions (id, user_email, expires_at) VALUES ($1, $2, $3)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, userEmail, expiresAt)
	return err
}

func (r *TokensRepoImpl) FindSession(ctx context.Context, id string) (*domain.Session, error) {
	const q = `SELECT id, user_email, expires_at FROM sessions WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Session
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.UserEmail, &s.ExpiresAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *TokensRepoImpl) DeleteSession(ctx context.Context, id string) error {
	const q = `DELETE FROM sessions WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

var _ TokensRepo = (*TokensRepoImpl)(nil)
