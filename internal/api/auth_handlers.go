package api

import (
	"net/http"

	"github.com/daystack/daystack/internal/auth"
	"github.com/daystack/daystack/internal/models"
)

// AuthHandler holds account and session route handlers.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Signup handles POST /api/auth/signup.
//
//	@Summary		Register an email/password account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		auth.Credentials	true	"Account to create"
//	@Success		201		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[auth.Credentials](w, r)
	if !ok {
		return
	}
	user, token, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		writeError(w, "signup", err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{User: user, Token: token})
}

// Login handles POST /api/auth/login.
//
//	@Summary		Exchange email/password credentials for a session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[LoginRequest](w, r)
	if !ok {
		return
	}
	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

// Google handles POST /api/auth/google.
//
//	@Summary		Exchange a Google ID token for a session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProviderTokenRequest	true	"Google ID token"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/auth/google [post]
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	h.providerLogin(w, r, models.ProviderGoogle)
}

// Facebook handles POST /api/auth/facebook.
//
//	@Summary		Exchange a Facebook access token for a session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProviderTokenRequest	true	"Facebook access token"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/auth/facebook [post]
func (h *AuthHandler) Facebook(w http.ResponseWriter, r *http.Request) {
	h.providerLogin(w, r, models.ProviderFacebook)
}

func (h *AuthHandler) providerLogin(w http.ResponseWriter, r *http.Request, provider models.AuthProvider) {
	req, ok := decode[ProviderTokenRequest](w, r)
	if !ok {
		return
	}
	user, token, err := h.svc.LoginWithProvider(r.Context(), provider, req.Token)
	if err != nil {
		writeError(w, "provider login", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

// Me handles GET /api/auth/me.
//
//	@Summary		Resolve the current session to a user record
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	models.User
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
