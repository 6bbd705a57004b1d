package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "irdesk/pkg/domain-errors"
	"irdesk/pkg/platform/httputil"
	"irdesk/pkg/requestcontext"
)

// JWTValidator validates an admin bearer token and returns its subject.
type JWTValidator interface {
	ValidateToken(tokenString string) (*AdminClaims, error)
}

// AdminClaims is what the admin API needs from a validated token.
type AdminClaims struct {
	Subject string
}

// RequireAdmin rejects requests without a valid bearer token and stores the
// token subject as the request actor.
func RequireAdmin(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithActorID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
