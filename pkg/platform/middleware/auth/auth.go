// Package auth resolves the caller identity of a request.
//
// A bearer token is always verified when present. Without one, the
// X-Caller-Identity header is honored only when header trust is enabled,
// which is meant for local development behind a trusted gateway.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	jwttoken "veriledger/internal/jwt_token"
	id "veriledger/pkg/domain"
	"veriledger/pkg/requestcontext"
)

// HeaderCallerIdentity names the development-only identity header.
const HeaderCallerIdentity = "X-Caller-Identity"

// TokenValidator verifies a bearer token.
type TokenValidator interface {
	Validate(token string) (*jwttoken.CallerClaims, error)
}

// Config controls caller resolution.
type Config struct {
	Validator   TokenValidator
	TrustHeader bool
}

func writeJSONError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, code, desc))
}

// ResolveCaller stores the caller in the context. Requests with no
// credentials pass through anonymously; handlers that need a caller reject
// them. An invalid token is rejected here.
func ResolveCaller(cfg Config, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if header := r.Header.Get("Authorization"); header != "" {
				token, ok := strings.CutPrefix(header, "Bearer ")
				if !ok || cfg.Validator == nil {
					logger.WarnContext(ctx, "unauthorized access - unsupported authorization header",
						"request_id", requestcontext.RequestID(ctx))
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
					return
				}
				claims, err := cfg.Validator.Validate(token)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx))
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
					return
				}
				next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, claims.Caller())))
				return
			}

			if raw := r.Header.Get(HeaderCallerIdentity); cfg.TrustHeader && raw != "" {
				caller, err := id.ParseIdentity(raw)
				if err != nil {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid caller identity")
					return
				}
				ctx = requestcontext.WithCaller(ctx, caller)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCaller rejects anonymous requests.
func RequireCaller(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.Caller(ctx).IsZero() {
				logger.WarnContext(ctx, "unauthorized access - no caller",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx))
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "caller identity is required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
