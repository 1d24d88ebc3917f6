package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"

	"taskplanner/internal/app"
	"taskplanner/internal/domain"
)

type registerPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authResponse is the body returned by every endpoint that yields a session.
type authResponse struct {
	Token       string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
	SessionInfo sessionInfo  `json:"session_info"`
}

type sessionInfo struct {
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func newAuthResponse(user *domain.User, sess *domain.Session) authResponse {
	return authResponse{
		Token:     sess.Token,
		TokenType: "bearer",
		User:      user,
		SessionInfo: sessionInfo{
			ExpiresAt: sess.ExpiresAt,
			CreatedAt: sess.CreatedAt,
		},
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := s.auth.Register(r.Context(), payload.Email, payload.Name, payload.Password)
	if errors.Is(err, app.ErrEmailTaken) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("register")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := s.auth.Issue(r.Context(), user.ID, clientIP(r), r.UserAgent())
	if err != nil {
		s.logger.Error().Err(err).Msg("issue session")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond(w, http.StatusCreated, newAuthResponse(user, sess), "registration successful")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := s.auth.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, app.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("login")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := s.auth.Issue(r.Context(), user.ID, clientIP(r), r.UserAgent())
	if err != nil {
		s.logger.Error().Err(err).Msg("issue session")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond(w, http.StatusOK, newAuthResponse(user, sess), "login successful")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, userFrom(r.Context()), "")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	revoked, err := s.auth.Revoke(r.Context(), bearerToken(r))
	if err != nil {
		s.logger.Error().Err(err).Msg("logout")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	msg := "session already ended"
	if revoked {
		msg = "logged out"
	}
	respond(w, http.StatusOK, map[string]any{"revoked": revoked}, msg)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	sess, err := s.auth.Refresh(r.Context(), bearerToken(r), user.ID, clientIP(r), r.UserAgent())
	if err != nil {
		s.logger.Error().Err(err).Msg("refresh")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, newAuthResponse(user, sess), "session refreshed")
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.auth.RevokeAll(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("logout all")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, map[string]any{"sessions_invalidated": n}, "all sessions ended")
}

// sessionView is the redacted shape returned by the session listing. The
// full token is never echoed back.
type sessionView struct {
	Token      string    `json:"token"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IPAddress  *string   `json:"ip_address"`
	UserAgent  *string   `json:"user_agent"`
	Current    bool      `json:"is_current"`
}

func redactToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.auth.ListActiveSessions(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("list sessions")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	current := bearerToken(r)
	views := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, sessionView{
			Token:      redactToken(sess.Token),
			CreatedAt:  sess.CreatedAt,
			LastUsedAt: sess.LastUsedAt,
			ExpiresAt:  sess.ExpiresAt,
			IPAddress:  sess.IPAddress,
			UserAgent:  sess.UserAgent,
			Current:    sess.Token == current,
		})
	}

	respond(w, http.StatusOK, map[string]any{
		"sessions":              views,
		"total_active_sessions": len(views),
	}, "")
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	n, err := s.auth.SweepExpired(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("cleanup")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, map[string]any{"cleaned_sessions": n}, "cleanup complete")
}

const ssoStateCookie = "sso_state"

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		respondError(w, http.StatusNotImplemented, "single sign-on is not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     ssoStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oidcConfig.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		respondError(w, http.StatusNotImplemented, "single sign-on is not configured")
		return
	}

	cookie, err := r.Cookie(ssoStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		respondError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	token, err := s.oidcConfig.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "code exchange failed")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "no id_token in response")
		return
	}

	verifier := s.oidcConfig.Provider.Verifier(&oidc.Config{ClientID: s.oidcConfig.OAuth2Config.ClientID})
	idToken, err := verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "id token verification failed")
		return
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		respondError(w, http.StatusUnauthorized, "missing email claim")
		return
	}

	user, err := s.auth.EnsureUser(r.Context(), claims.Email, claims.Name)
	if err != nil {
		s.logger.Error().Err(err).Msg("sso ensure user")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := s.auth.Issue(r.Context(), user.ID, clientIP(r), r.UserAgent())
	if err != nil {
		s.logger.Error().Err(err).Msg("issue session")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond(w, http.StatusOK, newAuthResponse(user, sess), "login successful")
}
