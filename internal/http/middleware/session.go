package middleware

import (
	"context"
	"net/http"

	"github.com/losclub/community-surveys/internal/domain"
	"github.com/losclub/community-surveys/internal/http/response"
	"github.com/losclub/community-surveys/internal/service"
	"github.com/losclub/community-surveys/pkg/logger"
)

type ctxKey string

const CtxUser ctxKey = "user"

// SessionCookie is the cookie carrying the opaque session id.
const SessionCookie = "session"

// RequireSession resolves the session cookie to a user and stores it in the
// request context. Missing, unknown, or expired sessions end the request
// with 401; expired sessions are deleted by the resolver before that.
func RequireSession(authSvc service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				response.Unauthorized(w, "invalid session")
				return
			}

			user, err := authSvc.ResolveSession(r.Context(), cookie.Value)
			if err != nil {
				response.FromError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUser, user)
			ctx = context.WithValue(ctx, logger.UserEmailKey, user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the session user placed by RequireSession, or nil.
func CurrentUser(r *http.Request) *domain.User {
	v := r.Context().Value(CtxUser)
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}
