package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/losclub/community-surveys/internal/domain"
)

type ResponsesRepo interface {
	// Create surfaces domain.ErrConflict when the question already has a
	// response (survey_responses.question_id is unique).
	Create(ctx context.Context, resp *domain.SurveyResponse) (*domain.SurveyResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SurveyResponse, error)
	Update(ctx context.Context, resp *domain.SurveyResponse) (*domain.SurveyResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListBySurvey(ctx context.Context, surveyID uuid.UUID, limit, offset int) ([]domain.SurveyResponse, error)
}

type ResponsesRepoImpl struct{ pool *pgxpool.Pool }

func NewResponsesRepo(pool *pgxpool.Pool) *ResponsesRepoImpl { return &ResponsesRepoImpl{pool: pool} }

const responseCols = `id, responder_email, question_id, survey_id, answers, created_at`

func (r *ResponsesRepoImpl) Create(ctx context.Context, resp *domain.SurveyResponse) (*domain.SurveyResponse, error) {
	const q = `
INSERT INTO survey_responses (responder_email, question_id, survey_id, answers)
VALUES ($1, $2, $3, $4)
RETURNING ` + responseCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.SurveyResponse
	err := r.pool.QueryRow(ctx, q, resp.ResponderEmail, resp.QuestionID, resp.SurveyID, resp.Answers).Scan(
		&out.ID, &out.ResponderEmail, &out.QuestionID, &out.SurveyID, &out.Answers, &out.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("question already has a response: %w", domain.ErrConflict)
		}
		return nil, err
	}
	return &out, nil
}

func (r *ResponsesRepoImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.SurveyResponse, error) {
	const q = `SELECT ` + responseCols + ` FROM survey_responses WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.SurveyResponse
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.ResponderEmail, &out.QuestionID, &out.SurveyID, &out.Answers, &out.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ResponsesRepoImpl) Update(ctx context.Context, resp *domain.SurveyResponse) (*domain.SurveyResponse, error) {
	const q = `
UPDATE survey_responses
SET answers=$2
WHERE id=$1
RETURNING ` + responseCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.SurveyResponse
	err := r.pool.QueryRow(ctx, q, resp.ID, resp.Answers).Scan(
		&out.ID, &out.ResponderEmail, &out.QuestionID, &out.SurveyID, &out.Answers, &out.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ResponsesRepoImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM survey_responses WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ResponsesRepoImpl) ListBySurvey(ctx context.Context, surveyID uuid.UUID, limit, offset int) ([]domain.SurveyResponse, error) {
	const q = `
SELECT ` + responseCols + `
FROM survey_responses
WHERE survey_id=$1
ORDER BY created_at
LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, surveyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rs := make([]domain.SurveyResponse, 0, limit)
	for rows.Next() {
		var out domain.SurveyResponse
		if err := rows.Scan(
			&out.ID, &out.ResponderEmail, &out.QuestionID, &out.SurveyID, &out.Answers, &out.CreatedAt,
		); err != nil {
			return nil, err
		}
		rs = append(rs, out)
	}
	return rs, rows.Err()
}

var _ ResponsesRepo = (*ResponsesRepoImpl)(nil)
