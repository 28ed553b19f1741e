package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/losclub/community-surveys/internal/domain"
)

type QuestionsRepo interface {
	Create(ctx context.Context, q *domain.SurveyQuestion) (*domain.SurveyQuestion, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SurveyQuestion, error)
	Update(ctx context.Context, q *domain.SurveyQuestion) (*domain.SurveyQuestion, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// ListBySurvey returns the survey's questions in creation order.
	ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]domain.SurveyQuestion, error)
}

type QuestionsRepoImpl struct{ pool *pgxpool.Pool }

func NewQuestionsRepo(pool *pgxpool.Pool) *QuestionsRepoImpl { return &QuestionsRepoImpl{pool: pool} }

const questionCols = `id, survey_id, author_email, question_type, title, created_at`

func (r *QuestionsRepoImpl) Create(ctx context.Context, in *domain.SurveyQuestion) (*domain.SurveyQuestion, error) {
	const q = `
INSERT INTO survey_questions (survey_id, author_email, question_type, title)
VALUES ($1, $2, $3, $4)
RETURNING ` + questionCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.SurveyQuestion
	err := r.pool.QueryRow(ctx, q, in.SurveyID, in.AuthorEmail, in.QuestionType, in.Title).Scan(
		&out.ID, &out.SurveyID, &out.AuthorEmail, &out.QuestionType, &out.Title, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *QuestionsRepoImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.SurveyQuestion, error) {
	const q = `SELECT ` + questionCols + ` FROM survey_questions WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.SurveyQuestion
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.SurveyID, &out.AuthorEmail, &out.QuestionType, &out.Title, &out.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *QuestionsRepoImpl) Update(ctx context.Context, in *domain.SurveyQuestion) (*domain.SurveyQuestion, error) {
	const q = `
UPDATE survey_questions
SET question_type=$2, title=$3
WHERE id=$1
RETURNING ` + questionCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.SurveyQuestion
	err := r.pool.QueryRow(ctx, q, in.ID, in.QuestionType, in.Title).Scan(
		&out.ID, &out.SurveyID, &out.AuthorEmail, &out.QuestionType, &out.Title, &out.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *QuestionsRepoImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM survey_questions WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *QuestionsRepoImpl) ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]domain.SurveyQuestion, error) {
	const q = `SELECT ` + questionCols + ` FROM survey_questions WHERE survey_id=$1 ORDER BY created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	qs := make([]domain.SurveyQuestion, 0)
	for rows.Next() {
		var out domain.SurveyQuestion
		if err := rows.Scan(
			&out.ID, &out.SurveyID, &out.AuthorEmail, &out.QuestionType, &out.Title, &out.CreatedAt,
		); err != nil {
			return nil, err
		}
		qs = append(qs, out)
	}
	return qs, rows.Err()
}

var _ QuestionsRepo = (*QuestionsRepoImpl)(nil)
