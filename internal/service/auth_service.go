package service

import (
	"context"
	"fmt"
	"time"

	"github.com/losclub/community-surveys/internal/auth"
	"github.com/losclub/community-surveys/internal/domain"
	"github.com/losclub/community-surveys/internal/repo/postgres"
	"github.com/losclub/community-surveys/pkg/config"
	"github.com/losclub/community-surveys/pkg/events"
	"github.com/losclub/community-surveys/pkg/logger"
	"github.com/losclub/community-surveys/pkg/mailer"
)

type AuthService interface {
	// Register creates a user and returns the login URL to present back.
	Register(ctx context.Context, req *domain.RegisterRequest) (loginURL string, err error)
	// RequestLogin issues a single-use login token and emails the
	// verification link. Delivery failure is fatal to the request.
	RequestLogin(ctx context.Context, email string) error
	// VerifyLoginToken consumes the token and upgrades it to a session.
	// The redirect target is returned unchanged.
	VerifyLoginToken(ctx context.Context, tokenID, fromURL string) (sessionID, redirect string, err error)
	// ResolveSession is the sole authentication gate: it maps a session
	// cookie value to its owning user, deleting expired sessions lazily.
	ResolveSession(ctx context.Context, sessionID string) (*domain.User, error)
}

type authService struct {
	users  postgres.UsersRepo
	tokens postgres.TokensRepo
	mailer mailer.Service
	bus    events.Publisher
	cfg    *config.Config
}

func NewAuthService(
	users postgres.UsersRepo,
	tokens postgres.TokensRepo,
	mailer mailer.Service,
	bus events.Publisher,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		bus:    bus,
		cfg:    cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	user, err := s.users.Create(ctx, req.Email, req.Username)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	if s.bus != nil {
		err := s.bus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
			Email:        user.Email,
			Username:     user.Username,
			RegisteredAt: time.Now(),
		})
		if err != nil {
			logger.WarnContext(ctx, "Failed to publish user.registered", "error", err)
		}
	}

	return s.cfg.URLs.ServerURL + "/v1/auth/login", nil
}

func (s *authService) RequestLogin(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}

	tokenID, err := auth.NewTokenID()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.cfg.Auth.LoginTokenTTL)
	if err := s.tokens.CreateLoginToken(ctx, tokenID, user.Email, expiresAt); err != nil {
		return fmt.Errorf("failed to persist login token: %w", err)
	}

	// The token is already persisted at this point; a transient delivery
	// failure leaves a token the user never received, and a retry simply
	// issues another one.
	link := fmt.Sprintf("%s/v1/auth/token?token=%s", s.cfg.URLs.ServerURL, tokenID)
	if err := s.mailer.SendLoginLink(user.Email, link); err != nil {
		logger.ErrorContext(ctx, "Failed to send login link", "error", err, "email", user.Email)
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}

	if s.bus != nil {
		err := s.bus.Publish(ctx, events.LoginLinkRequested, events.LoginLinkRequestedEvent{
			Email:       user.Email,
			RequestedAt: time.Now(),
			ExpiresAt:   expiresAt,
		})
		if err != nil {
			logger.WarnContext(ctx, "Failed to publish auth.login.requested", "error", err)
		}
	}

	return nil
}

func (s *authService) VerifyLoginToken(ctx context.Context, tokenID, fromURL string) (string, string, error) {
	// Consume is a conditional delete-and-return: the token row is gone
	// whether it turns out valid or expired, so a concurrent verification
	// of the same token cannot also succeed.
	token, err := s.tokens.ConsumeLoginToken(ctx, tokenID)
	if err != nil {
		return "", "", fmt.Errorf("failed to consume login token: %w", err)
	}
	if token == nil {
		return "", "", fmt.Errorf("token not found: %w", domain.ErrNotFound)
	}
	if token.Expired(time.Now()) {
		return "", "", fmt.Errorf("token expired: %w", domain.ErrUnauthorized)
	}

	sessionID, err := auth.NewTokenID()
	if err != nil {
		return "", "", err
	}

	expiresAt := time.Now().Add(s.cfg.Auth.SessionTTL)
	if err := s.tokens.CreateSession(ctx, sessionID, token.UserEmail, expiresAt); err != nil {
		return "", "", fmt.Errorf("failed to create session: %w", err)
	}

	logger.InfoContext(ctx, "Login token verified", "email", token.UserEmail)
	return sessionID, fromURL, nil
}

func (s *authService) ResolveSession(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("invalid session: %w", domain.ErrUnauthorized)
	}

	sess, err := s.tokens.FindSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("invalid session: %w", domain.ErrUnauthorized)
	}
	if sess.Expired(time.Now()) {
		if err := s.tokens.DeleteSession(ctx, sess.ID); err != nil {
			logger.WarnContext(ctx, "Failed to delete expired session", "error", err)
		}
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}

	user, err := s.users.FindByEmail(ctx, sess.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("invalid session: %w", domain.ErrUnauthorized)
	}
	return user, nil
}
