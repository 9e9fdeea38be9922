package apitest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/smart-review/smart-review-cli/internal/authn"
	"github.com/smart-review/smart-review-cli/models"
)

type contextKey string

const claimsKey contextKey = "claims"

// requireToken rejects requests without a bearer token this server issued
// in the current epoch.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "authorization header missing")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			writeEnvelope(w, http.StatusUnauthorized, nil, "invalid token format")
			return
		}

		claims := authn.Claims{}
		_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		})
		if err != nil {
			writeEnvelope(w, http.StatusUnauthorized, nil, "invalid bearer token")
			return
		}

		s.mu.Lock()
		epoch := strconv.Itoa(s.epoch)
		s.mu.Unlock()
		if claims.Id != epoch {
			writeEnvelope(w, http.StatusUnauthorized, nil, "token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole rejects authenticated requests whose role is not role.
func requireRole(role models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(claimsKey).(authn.Claims)
		if !ok || claims.Role != string(role) {
			writeEnvelope(w, http.StatusForbidden, nil, "forbidden")
			return
		}
		next(w, r)
	}
}
