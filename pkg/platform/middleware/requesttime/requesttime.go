// Package requesttime pins one "now" per request so every timestamp written
// while serving it (audit entries, credential issuance, session updates)
// agrees.
package requesttime

import (
	"net/http"
	"time"

	"veriledger/pkg/requestcontext"
)

// Middleware stores the request start time, in UTC, in the context.
func Middleware(next http.Handler) http.Handler {
	return Clock(time.Now)(next)
}

// Clock is Middleware with an injectable time source.
func Clock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
