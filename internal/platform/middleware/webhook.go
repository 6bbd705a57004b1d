package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"irdesk/pkg/requestcontext"
)

// SignatureHeader carries the provider's shared secret on callbacks.
const SignatureHeader = "X-Signature"

// RecordRejection is notified of every rejected callback, e.g. to emit an
// audit event.
type RecordRejection func(r *http.Request)

// RequireSharedSecret rejects callbacks whose signature header does not match
// secret. An empty secret rejects everything.
func RequireSharedSecret(secret string, logger *slog.Logger, onReject RecordRejection) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(SignatureHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "webhook signature rejected",
					"request_id", requestcontext.RequestID(ctx),
					"signature_present", got != "",
					"remote_addr", r.RemoteAddr,
				)
				if onReject != nil {
					onReject(r)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"error":"signature_invalid"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
