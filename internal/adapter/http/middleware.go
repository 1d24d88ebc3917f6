package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"taskplanner/internal/app"
	"taskplanner/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// bearerToken extracts the token from the Authorization header, or returns
// an empty string.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondError(w, http.StatusUnauthorized, "could not validate credentials")
}

// requireAuth is the authentication gate: it maps the bearer token to a user
// or rejects the request. Missing, unknown, expired, and revoked tokens all
// produce the same response.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w)
			return
		}

		user, err := s.auth.Authenticate(r.Context(), token)
		if errors.Is(err, app.ErrUnauthenticated) {
			unauthorized(w)
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("authenticate")
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates administrative endpoints behind the configured email
// allow-list. It must run after requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if _, ok := s.adminEmails[user.Email]; !ok {
			// Same shape as a missing resource so the endpoint's
			// existence is not advertised.
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFrom returns the authenticated user stored by requireAuth.
func userFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger emits one structured log line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
