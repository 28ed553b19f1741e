package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/losclub/community-surveys/internal/auth"
	"github.com/losclub/community-surveys/internal/domain"
	"github.com/losclub/community-surveys/internal/repo/postgres"
	"github.com/losclub/community-surveys/pkg/events"
	"github.com/losclub/community-surveys/pkg/logger"
)

// maxPageSize caps offset/limit pagination on all listing endpoints.
const maxPageSize = 10

type SurveyService interface {
	ListSurveys(ctx context.Context, user *domain.User, offset, limit int, activeOnly bool) ([]domain.Survey, error)
	GetSurvey(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Survey, error)
	CreateSurvey(ctx context.Context, user *domain.User, in *domain.SurveyInput) (*domain.Survey, error)
	UpdateSurvey(ctx context.Context, user *domain.User, in *domain.SurveyInput) (*domain.Survey, error)
	DeleteSurvey(ctx context.Context, user *domain.User, id uuid.UUID) error

	ListQuestions(ctx context.Context, user *domain.User, surveyID uuid.UUID) ([]domain.SurveyQuestion, error)
	CreateQuestion(ctx context.Context, user *domain.User, surveyID uuid.UUID, in *domain.QuestionInput) (*domain.SurveyQuestion, error)
	UpdateQuestion(ctx context.Context, user *domain.User, in *domain.QuestionInput) (*domain.SurveyQuestion, error)
	DeleteQuestion(ctx context.Context, user *domain.User, questionID uuid.UUID) error

	GetResponse(ctx context.Context, user *domain.User, responseID uuid.UUID) (*domain.SurveyResponse, error)
	ListResponses(ctx context.Context, user *domain.User, surveyID uuid.UUID, offset, limit int) ([]domain.SurveyResponse, error)
	CreateResponse(ctx context.Context, user *domain.User, surveyID, questionID uuid.UUID, in *domain.ResponseInput) (*domain.SurveyResponse, error)
	UpdateResponse(ctx context.Context, user *domain.User, surveyID, questionID uuid.UUID, in *domain.ResponseInput) (*domain.SurveyResponse, error)
	DeleteResponse(ctx context.Context, user *domain.User, responseID uuid.UUID) error
}

type surveyService struct {
	surveys   postgres.SurveysRepo
	questions postgres.QuestionsRepo
	responses postgres.ResponsesRepo
	bus       events.Publisher
}

func NewSurveyService(
	surveys postgres.SurveysRepo,
	questions postgres.QuestionsRepo,
	responses postgres.ResponsesRepo,
	bus events.Publisher,
) SurveyService {
	return &surveyService{
		surveys:   surveys,
		questions: questions,
		responses: responses,
		bus:       bus,
	}
}

func normalizePage(offset, limit int) (int, int, error) {
	if offset < 0 {
		return 0, 0, fmt.Errorf("offset must not be negative: %w", domain.ErrInvalidArgument)
	}
	if limit == 0 {
		limit = maxPageSize
	}
	if limit < 0 || limit > maxPageSize {
		return 0, 0, fmt.Errorf("limit must be between 1 and %d: %w", maxPageSize, domain.ErrInvalidArgument)
	}
	return offset, limit, nil
}

// Surveys

func (s *surveyService) ListSurveys(ctx context.Context, user *domain.User, offset, limit int, activeOnly bool) ([]domain.Survey, error) {
	if !auth.CanListAllSurveys(user) {
		return nil, fmt.Errorf("listing surveys requires admin: %w", domain.ErrForbidden)
	}
	offset, limit, err := normalizePage(offset, limit)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		return s.surveys.ListActive(ctx, limit, offset)
	}
	return s.surveys.List(ctx, limit, offset)
}

func (s *surveyService) GetSurvey(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Survey, error) {
	survey, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, fmt.Errorf("survey not found: %w", domain.ErrNotFound)
	}
	return survey, nil
}

func (s *surveyService) CreateSurvey(ctx context.Context, user *domain.User, in *domain.SurveyInput) (*domain.Survey, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	survey, err := s.surveys.Create(ctx, &domain.Survey{
		AuthorEmail: user.Email,
		Title:       in.Title,
		Description: in.Description,
		Active:      in.Active,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	if s.bus != nil {
		err := s.bus.Publish(ctx, events.SurveyCreated, events.SurveyCreatedEvent{
			SurveyID:    survey.ID,
			AuthorEmail: survey.AuthorEmail,
			Title:       survey.Title,
			Active:      survey.Active,
			CreatedAt:   survey.CreatedAt,
		})
		if err != nil {
			logger.WarnContext(ctx, "Failed to publish survey.created", "error", err)
		}
	}

	return survey, nil
}

func (s *surveyService) UpdateSurvey(ctx context.Context, user *domain.User, in *domain.SurveyInput) (*domain.Survey, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed survey id: %w", domain.ErrInvalidArgument)
	}

	survey, err := s.surveys.Update(ctx, &domain.Survey{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Active:      in.Active,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}
	if survey == nil {
		return nil, fmt.Errorf("survey not found: %w", domain.ErrNotFound)
	}
	return survey, nil
}

func (s *surveyService) DeleteSurvey(ctx context.Context, user *domain.User, id uuid.UUID) error {
	if !auth.CanMutateSurveyStructure(user) {
		return fmt.Errorf("deleting surveys requires admin: %w", domain.ErrForbidden)
	}

	deleted, err := s.surveys.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	if !deleted {
		return fmt.Errorf("survey not found: %w", domain.ErrNotFound)
	}

	if s.bus != nil {
		err := s.bus.Publish(ctx, events.SurveyDeleted, events.SurveyDeletedEvent{
			SurveyID:  id,
			DeletedBy: user.Email,
			DeletedAt: time.Now(),
		})
		if err != nil {
			logger.WarnContext(ctx, "Failed to publish survey.deleted", "error", err)
		}
	}

	return nil
}

// Questions

func (s *surveyService) ListQuestions(ctx context.Context, user *domain.User, surveyID uuid.UUID) ([]domain.SurveyQuestion, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, fmt.Errorf("survey not found: %w", domain.ErrNotFound)
	}
	return s.questions.ListBySurvey(ctx, surveyID)
}

func (s *surveyService) CreateQuestion(ctx context.Context, user *domain.User, surveyID uuid.UUID, in *domain.QuestionInput) (*domain.SurveyQuestion, error) {
	if !auth.CanMutateSurveyStructure(user) {
		return nil, fmt.Errorf("mutating survey questions requires admin: %w", domain.ErrForbidden)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, fmt.Errorf("survey not found: %w", domain.ErrNotFound)
	}

	qt, _ := domain.ParseQuestionType(in.QuestionType)
	return s.questions.Create(ctx, &domain.SurveyQuestion{
		SurveyID:     surveyID,
		AuthorEmail:  user.Email,
		QuestionType: qt,
		Title:        in.Title,
	})
}

func (s *surveyService) UpdateQuestion(ctx context.Context, user *domain.User, in *domain.QuestionInput) (*domain.SurveyQuestion, error) {
	if !auth.CanMutateSurveyStructure(user) {
		return nil, fmt.Errorf("mutating survey questions requires admin: %w", domain.ErrForbidden)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed question id: %w", domain.ErrInvalidArgument)
	}

	qt, _ := domain.ParseQuestionType(in.QuestionType)
	question, err := s.questions.Update(ctx, &domain.SurveyQuestion{
		ID:           id,
		QuestionType: qt,
		Title:        in.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	if question == nil {
		return nil, fmt.Errorf("question not found: %w", domain.ErrNotFound)
	}
	return question, nil
}

func (s *surveyService) DeleteQuestion(ctx context.Context, user *domain.User, questionID uuid.UUID) error {
	if !auth.CanMutateSurveyStructure(user) {
		return fmt.Errorf("mutating survey questions requires admin: %w", domain.ErrForbidden)
	}

	deleted, err := s.questions.Delete(ctx, questionID)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if !deleted {
		return fmt.Errorf("question not found: %w", domain.ErrNotFound)
	}
	return nil
}

// Responses

func (s *surveyService) GetResponse(ctx context.Context, user *domain.User, responseID uuid.UUID) (*domain.SurveyResponse, error) {
	resp, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("response not found: %w", domain.ErrNotFound)
	}
	if !auth.CanReadResponse(user, resp.ResponderEmail) {
		return nil, fmt.Errorf("reading another user's response requires admin: %w", domain.ErrForbidden)
	}
	return resp, nil
}

func (s *surveyService) ListResponses(ctx context.Context, user *domain.User, surveyID uuid.UUID, offset, limit int) ([]domain.SurveyResponse, error) {
	if !auth.CanListAllSurveys(user) {
		return nil, fmt.Errorf("listing responses requires admin: %w", domain.ErrForbidden)
	}
	offset, limit, err := normalizePage(offset, limit)
	if err != nil {
		return nil, err
	}

	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, fmt.Errorf("survey not found: %w", domain.ErrNotFound)
	}
	return s.responses.ListBySurvey(ctx, surveyID, limit, offset)
}

func (s *surveyService) CreateResponse(ctx context.Context, user *domain.User, surveyID, questionID uuid.UUID, in *domain.ResponseInput) (*domain.SurveyResponse, error) {
	if !auth.CanWriteResponse(user, in.ResponderEmail) {
		return nil, fmt.Errorf("responses can only be submitted as yourself: %w", domain.ErrForbidden)
	}

	question, err := s.resolveSurveyQuestion(ctx, surveyID, questionID)
	if err != nil {
		return nil, err
	}

	// Answer shape is keyed by the stored question's type, not anything the
	// client claims.
	if err := domain.ValidateAnswers(question.QuestionType, in.Answers); err != nil {
		return nil, err
	}

	resp, err := s.responses.Create(ctx, &domain.SurveyResponse{
		ResponderEmail: in.ResponderEmail,
		QuestionID:     questionID,
		SurveyID:       surveyID,
		Answers:        in.Answers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	if s.bus != nil {
		err := s.bus.Publish(ctx, events.SurveyResponseCreated, events.SurveyResponseCreatedEvent{
			ResponseID:     resp.ID,
			SurveyID:       resp.SurveyID,
			QuestionID:     resp.QuestionID,
			ResponderEmail: resp.ResponderEmail,
			AnswerCount:    len(resp.Answers),
			CreatedAt:      resp.CreatedAt,
		})
		if err != nil {
			logger.WarnContext(ctx, "Failed to publish survey.response.created", "error", err)
		}
	}

	return resp, nil
}

func (s *surveyService) UpdateResponse(ctx context.Context, user *domain.User, surveyID, questionID uuid.UUID, in *domain.ResponseInput) (*domain.SurveyResponse, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("response id must be provided: %w", domain.ErrInvalidArgument)
	}
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed response id: %w", domain.ErrInvalidArgument)
	}

	question, err := s.resolveSurveyQuestion(ctx, surveyID, questionID)
	if err != nil {
		return nil, err
	}

	existing, err := s.responses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("response not found: %w", domain.ErrNotFound)
	}
	// Ownership is checked against the stored responder, so no account type
	// can edit someone else's response.
	if !auth.CanWriteResponse(user, existing.ResponderEmail) {
		return nil, fmt.Errorf("responses can only be edited by their responder: %w", domain.ErrForbidden)
	}

	if err := domain.ValidateAnswers(question.QuestionType, in.Answers); err != nil {
		return nil, err
	}

	updated, err := s.responses.Update(ctx, &domain.SurveyResponse{
		ID:      id,
		Answers: in.Answers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update response: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("response not found: %w", domain.ErrNotFound)
	}
	return updated, nil
}

func (s *surveyService) DeleteResponse(ctx context.Context, user *domain.User, responseID uuid.UUID) error {
	resp, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return fmt.Errorf("failed to get response: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("response not found: %w", domain.ErrNotFound)
	}
	if !auth.CanWriteResponse(user, resp.ResponderEmail) {
		return fmt.Errorf("responses can only be deleted by their responder: %w", domain.ErrForbidden)
	}

	deleted, err := s.responses.Delete(ctx, responseID)
	if err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}
	if !deleted {
		return fmt.Errorf("response not found: %w", domain.ErrNotFound)
	}
	return nil
}

// resolveSurveyQuestion checks that both the survey and the question exist
// and that the question belongs to the survey.
func (s *surveyService) resolveSurveyQuestion(ctx context.Context, surveyID, questionID uuid.UUID) (*domain.SurveyQuestion, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, fmt.Errorf("survey not found: %w", domain.ErrNotFound)
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, fmt.Errorf("question not found: %w", domain.ErrNotFound)
	}
	if question.SurveyID != surveyID {
		return nil, fmt.Errorf("question does not belong to survey: %w", domain.ErrNotFound)
	}
	return question, nil
}
