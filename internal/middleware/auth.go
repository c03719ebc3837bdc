// Package middleware provides HTTP middleware for the gateway.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cryptoboard/gateway/internal/auth"
	"github.com/cryptoboard/gateway/pkg/logger"
)

// AuthMiddleware resolves bearer tokens into request identity.
type AuthMiddleware struct {
	credentials *auth.Service
	log         *logger.Logger
}

// NewAuthMiddleware creates the authentication middleware.
func NewAuthMiddleware(credentials *auth.Service, log *logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewDefault("auth-middleware")
	}
	return &AuthMiddleware{credentials: credentials, log: log}
}

// Require short-circuits with 401 before the handler runs unless the request
// carries a valid bearer token. The response is identical for a missing,
// malformed, forged or expired token.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w)
			return
		}

		userID, ok := m.credentials.Authenticate(token)
		if !ok {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

// Optional resolves identity when a valid token is present and passes the
// request through anonymously otherwise. Handlers downstream decide what an
// absent identity means.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if userID, ok := m.credentials.Authenticate(token); ok {
				r = r.WithContext(auth.WithUserID(r.Context(), userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
