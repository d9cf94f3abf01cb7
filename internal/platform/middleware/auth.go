package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"datawipe/internal/authz"
)

// TokenValidator resolves a bearer token into an authenticated actor.
type TokenValidator interface {
	ValidateToken(tokenString string) (authz.Actor, error)
}

type contextKeyActor struct{}

// WithActor stores the authenticated actor in the request context. Exported so
// tests and internal callers can inject an actor without going through JWT.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, contextKeyActor{}, actor)
}

// ActorFrom retrieves the authenticated actor from the context.
func ActorFrom(ctx context.Context) (authz.Actor, bool) {
	actor, ok := ctx.Value(contextKeyActor{}).(authz.Actor)
	return actor, ok
}

// RequireAuth rejects requests without a valid bearer token and places the
// resolved actor in the request context for handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			actor, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
