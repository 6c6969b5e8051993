// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/lib/response"
	"polyphona/internal/storage"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TokenResolver maps a bearer token to the username that owns it.
// *service.TokenService satisfies it.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type contextKey string

const usernameKey contextKey = "username"

// UsernameFromContext returns the username put there by RequireToken.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// ContextWithUsername returns a copy of ctx carrying an authenticated
// username, exactly as RequireToken stores it.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// RequireToken rejects requests that do not carry a resolvable
// "Authorization: Token {token}" header and stores the resolved username in
// the request context for the handler.
func RequireToken(resolver TokenResolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
			if !ok || token == "" {
				response.Error(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}

			username, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, storage.ErrTokenNotFound) {
					response.Error(w, http.StatusUnauthorized, "Invalid token.")
					return
				}
				utils.Logger.Error("RequireToken - resolver.Resolve failed", zap.Error(err))
				response.Error(w, http.StatusInternalServerError, "Failed to authenticate")
				return
			}

			ctx := ContextWithUsername(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
