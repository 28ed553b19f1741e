package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/losclub/community-surveys/internal/domain"
)

// In-memory repository doubles. They mirror the postgres contracts: missing
// rows come back as (nil, nil), duplicate keys surface domain.ErrConflict.

type memUsersRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{users: make(map[string]*domain.User)}
}

func (r *memUsersRepo) Create(ctx context.Context, email, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[email]; exists {
		return nil, fmt.Errorf("user already exists: %w", domain.ErrConflict)
	}
	u := &domain.User{
		Email:       email,
		ID:          uuid.New(),
		Username:    username,
		AccountType: domain.AccountUser,
		CreatedAt:   time.Now(),
	}
	r.users[email] = u
	return u, nil
}

func (r *memUsersRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *memUsersRepo) promote(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		u.AccountType = domain.AccountAdmin
	}
}

type memTokensRepo struct {
	mu       sync.Mutex
	tokens   map[string]*domain.LoginToken
	sessions map[string]*domain.Session
}

func newMemTokensRepo() *memTokensRepo {
	return &memTokensRepo{
		tokens:   make(map[string]*domain.LoginToken),
		sessions: make(map[string]*domain.Session),
	}
}

func (r *memTokensRepo) CreateLoginToken(ctx context.Context, id, userEmail string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[id] = &domain.LoginToken{ID: id, UserEmail: userEmail, ExpiresAt: expiresAt}
	return nil
}

func (r *memTokensRepo) ConsumeLoginToken(ctx context.Context, id string) (*domain.LoginToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil, nil
	}
	delete(r.tokens, id)
	return t, nil
}

func (r *memTokensRepo) CreateSession(ctx context.Context, id, userEmail string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &domain.Session{ID: id, UserEmail: userEmail, ExpiresAt: expiresAt}
	return nil
}

func (r *memTokensRepo) FindSession(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memTokensRepo) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

type memSurveysRepo struct {
	mu      sync.Mutex
	surveys map[uuid.UUID]*domain.Survey
	order   []uuid.UUID
}

func newMemSurveysRepo() *memSurveysRepo {
	return &memSurveysRepo{surveys: make(map[uuid.UUID]*domain.Survey)}
}

func (r *memSurveysRepo) Create(ctx context.Context, s *domain.Survey) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *s
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	r.surveys[created.ID] = &created
	r.order = append(r.order, created.ID)
	out := created
	return &out, nil
}

func (r *memSurveysRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memSurveysRepo) Update(ctx context.Context, s *domain.Survey) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.surveys[s.ID]
	if !ok {
		return nil, nil
	}
	existing.Title = s.Title
	existing.Description = s.Description
	existing.Active = s.Active
	copied := *existing
	return &copied, nil
}

func (r *memSurveysRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[id]; !ok {
		return false, nil
	}
	delete(r.surveys, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *memSurveysRepo) List(ctx context.Context, limit, offset int) ([]domain.Survey, error) {
	return r.list(limit, offset, false)
}

func (r *memSurveysRepo) ListActive(ctx context.Context, limit, offset int) ([]domain.Survey, error) {
	return r.list(limit, offset, true)
}

func (r *memSurveysRepo) list(limit, offset int, activeOnly bool) ([]domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Survey
	for _, id := range r.order {
		s := r.surveys[id]
		if activeOnly && !s.Active {
			continue
		}
		all = append(all, *s)
	}
	if offset >= len(all) {
		return []domain.Survey{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type memQuestionsRepo struct {
	mu        sync.Mutex
	questions map[uuid.UUID]*domain.SurveyQuestion
	order     []uuid.UUID
}

func newMemQuestionsRepo() *memQuestionsRepo {
	return &memQuestionsRepo{questions: make(map[uuid.UUID]*domain.SurveyQuestion)}
}

func (r *memQuestionsRepo) Create(ctx context.Context, q *domain.SurveyQuestion) (*domain.SurveyQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *q
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	r.questions[created.ID] = &created
	r.order = append(r.order, created.ID)
	out := created
	return &out, nil
}

func (r *memQuestionsRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SurveyQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, nil
	}
	copied := *q
	return &copied, nil
}

func (r *memQuestionsRepo) Update(ctx context.Context, q *domain.SurveyQuestion) (*domain.SurveyQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.questions[q.ID]
	if !ok {
		return nil, nil
	}
	existing.Title = q.Title
	existing.QuestionType = q.QuestionType
	copied := *existing
	return &copied, nil
}

func (r *memQuestionsRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[id]; !ok {
		return false, nil
	}
	delete(r.questions, id)
	return true, nil
}

func (r *memQuestionsRepo) ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]domain.SurveyQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SurveyQuestion
	for _, id := range r.order {
		q := r.questions[id]
		if q.SurveyID == surveyID {
			out = append(out, *q)
		}
	}
	return out, nil
}

type memResponsesRepo struct {
	mu        sync.Mutex
	responses map[uuid.UUID]*domain.SurveyResponse
	order     []uuid.UUID
}

func newMemResponsesRepo() *memResponsesRepo {
	return &memResponsesRepo{responses: make(map[uuid.UUID]*domain.SurveyResponse)}
}

func (r *memResponsesRepo) Create(ctx context.Context, resp *domain.SurveyResponse) (*domain.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.responses {
		if existing.QuestionID == resp.QuestionID {
			return nil, fmt.Errorf("question already has a response: %w", domain.ErrConflict)
		}
	}
	created := *resp
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	r.responses[created.ID] = &created
	r.order = append(r.order, created.ID)
	out := created
	return &out, nil
}

func (r *memResponsesRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.responses[id]
	if !ok {
		return nil, nil
	}
	copied := *resp
	return &copied, nil
}

func (r *memResponsesRepo) Update(ctx context.Context, resp *domain.SurveyResponse) (*domain.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.responses[resp.ID]
	if !ok {
		return nil, nil
	}
	existing.Answers = resp.Answers
	copied := *existing
	return &copied, nil
}

func (r *memResponsesRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.responses[id]; !ok {
		return false, nil
	}
	delete(r.responses, id)
	for i, rid := range r.order {
		if rid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *memResponsesRepo) ListBySurvey(ctx context.Context, surveyID uuid.UUID, limit, offset int) ([]domain.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.SurveyResponse
	for _, id := range r.order {
		resp := r.responses[id]
		if resp.SurveyID == surveyID {
			all = append(all, *resp)
		}
	}
	if offset >= len(all) {
		return []domain.SurveyResponse{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// capturingMailer records sent login links instead of delivering them.
type capturingMailer struct {
	mu    sync.Mutex
	links []string
	fail  bool
}

func (m *capturingMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	if m.fail {
		return "", fmt.Errorf("smtp: connection refused")
	}
	return "mock-message-id", nil
}

func (m *capturingMailer) SendLoginLink(email, link string) error {
	if m.fail {
		return fmt.Errorf("smtp: connection refused")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
	return nil
}

func (m *capturingMailer) lastLink() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.links) == 0 {
		return ""
	}
	return m.links[len(m.links)-1]
}
