package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/room-scheduler/backend/internal/auth"
)

type contextKey string

const actorKey contextKey = "actor"

// Auth verifies the bearer token on every request and stores the
// resulting Actor in the request context. Requests without a valid token
// are rejected with 401.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if token == "" || token == header {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Missing bearer token")
				return
			}

			actor, err := auth.ParseToken(secret, token)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom extracts the authenticated actor stored by Auth.
func ActorFrom(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(auth.Actor)
	return actor, ok
}
