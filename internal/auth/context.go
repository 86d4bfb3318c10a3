package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey struct{}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserID returns the authenticated user stored by Middleware.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok
}

type Authenticator interface {
	Authenticate(raw string) (uuid.UUID, error)
}

// Middleware rejects requests without a valid "Authorization: Bearer" token.
func Middleware(a Authenticator, unauthorized func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return guard(a, unauthorized, bearer)
}

// SocketMiddleware is Middleware that also takes the token from the "token"
// query parameter, which browsers need for WebSocket upgrades. Mount it on
// the upgrade route only: query strings end up in access logs.
func SocketMiddleware(a Authenticator, unauthorized func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return guard(a, unauthorized, func(r *http.Request) string {
		if r.Header.Get("Authorization") != "" {
			return bearer(r)
		}

		return r.URL.Query().Get("token")
	})
}

func guard(a Authenticator, unauthorized func(w http.ResponseWriter, r *http.Request, err error), token func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := token(r)
			if raw == "" {
				unauthorized(w, r, ErrInvalidToken)
				return
			}

			id, err := a.Authenticate(raw)
			if err != nil {
				unauthorized(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

func bearer(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}
