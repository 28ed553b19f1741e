package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/losclub/community-surveys/internal/domain"
	"github.com/losclub/community-surveys/internal/http/response"
	"github.com/losclub/community-surveys/internal/service"
)

type AuthHandler struct {
	Auth        service.AuthService
	FrontendURL string
}

func NewAuthHandler(auth service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{Auth: auth, FrontendURL: frontendURL}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register) // form: username, email
	r.Post("/login", h.login)       // form: email
	r.Get("/token", h.verifyToken)  // ?token=...&from_url=...
	return r
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "invalid form data")
		return
	}

	req := &domain.RegisterRequest{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
	}

	loginURL, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]string{
		"message":   "You were successfully registered",
		"login_url": loginURL,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "invalid form data")
		return
	}

	email := r.PostFormValue("email")
	if email == "" {
		response.BadRequest(w, "email is required")
		return
	}

	if err := h.Auth.RequestLogin(r.Context(), email); err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Login link sent to client email address",
	})
}

func (h *AuthHandler) verifyToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.BadRequest(w, "missing token")
		return
	}

	fromURL := r.URL.Query().Get("from_url")
	if fromURL == "" {
		fromURL = h.FrontendURL + "/v1/auth/login"
	}

	sessionID, redirect, err := h.Auth.VerifyLoginToken(r.Context(), token, fromURL)
	if err != nil {
		response.FromError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
	})
	response.WriteJSON(w, http.StatusOK, map[string]string{"redirect": redirect})
}
