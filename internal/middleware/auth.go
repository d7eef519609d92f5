package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"taskboard/internal/identity"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
)

const principalKey contextKey = "principal"
const tokenKey contextKey = "session_token"

// SessionResolver is what Auth needs from the identity layer.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Principal, error)
}

// Auth resolves the bearer token into a principal and tags the request
// context with it, plus the actor id for the store's audit trigger.
// A missing session is the one fatal identity failure: 401 and out.
func Auth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)

			principal, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, identity.ErrNoSession) {
					writeAuthError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "no active session")
					return
				}
				logger.Error("HTTP: session resolution failed", err,
					zap.String("request_id", GetRequestID(r.Context())))
				writeAuthError(w, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "identity service unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = context.WithValue(ctx, tokenKey, token)
			ctx = repository.WithActor(ctx, principal.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates admin-only actions. Row-level security in the
// store is the real enforcement; this is the early, friendly answer.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipal(r.Context())
		if !ok || !principal.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "PERMISSION_DENIED", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetPrincipal(ctx context.Context) (*identity.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*identity.Principal)
	return principal, ok
}

func GetSessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}

// WithPrincipal is a test hook for handler tests that bypass Auth.
func WithPrincipal(ctx context.Context, principal *identity.Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey, principal)
	return repository.WithActor(ctx, principal.UserID)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   errCode,
		"message": message,
	})
}
