package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/losclub/community-surveys/internal/domain"
)

type SurveysRepo interface {
	Create(ctx context.Context, s *domain.Survey) (*domain.Survey, error)
	// GetByID returns (nil, nil) when the survey does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Survey, error)
	// Update returns (nil, nil) when the survey does not exist.
	Update(ctx context.Context, s *domain.Survey) (*domain.Survey, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Survey, error)
	ListActive(ctx context.Context, limit, offset int) ([]domain.Survey, error)
}

type SurveysRepoImpl struct{ pool *pgxpool.Pool }

func NewSurveysRepo(pool *pgxpool.Pool) *SurveysRepoImpl { return &SurveysRepoImpl{pool: pool} }

const surveyCols = `id, author_email, title, description, active, created_at`

func (r *SurveysRepoImpl) Create(ctx context.Context, s *domain.Survey) (*domain.Survey, error) {
	const q = `
INSERT INTO surveys (author_email, title, description, active)
VALUES ($1, $2, $3, $4)
RETURNING ` + surveyCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.Survey
	err := r.pool.QueryRow(ctx, q, s.AuthorEmail, s.Title, s.Description, s.Active).Scan(
		&out.ID, &out.AuthorEmail, &out.Title, &out.Description, &out.Active, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SurveysRepoImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Survey, error) {
	const q = `SELECT ` + surveyCols + ` FROM surveys WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Survey
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.AuthorEmail, &s.Title, &s.Description, &s.Active, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SurveysRepoImpl) Update(ctx context.Context, s *domain.Survey) (*domain.Survey, error) {
	const q = `
UPDATE surveys
SET title=$2, description=$3, active=$4
WHERE id=$1
RETURNING ` + surveyCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.Survey
	err := r.pool.QueryRow(ctx, q, s.ID, s.Title, s.Description, s.Active).Scan(
		&out.ID, &out.AuthorEmail, &out.Title, &out.Description, &out.Active, &out.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SurveysRepoImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM surveys WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *SurveysRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.Survey, error) {
	const q = `SELECT ` + surveyCols + ` FROM surveys ORDER BY created_at LIMIT $1 OFFSET $2`
	return r.list(ctx, q, limit, offset)
}

func (r *SurveysRepoImpl) ListActive(ctx context.Context, limit, offset int) ([]domain.Survey, error) {
	const q = `SELECT ` + surveyCols + ` FROM surveys WHERE active ORDER BY created_at LIMIT $1 OFFSET $2`
	return r.list(ctx, q, limit, offset)
}

func (r *SurveysRepoImpl) list(ctx context.Context, q string, limit, offset int) ([]domain.Survey, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ss := make([]domain.Survey, 0, limit)
	for rows.Next() {
		var s domain.Survey
		if err := rows.Scan(
			&s.ID, &s.AuthorEmail, &s.Title, &s.Description, &s.Active, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	return ss, rows.Err()
}

var _ SurveysRepo = (*SurveysRepoImpl)(nil)
