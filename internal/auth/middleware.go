package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type prevents collisions: only this package can read
// or write the principal stored in a request context.
type contextKey string

const principalKey contextKey = "principal"

// WriteAuthError lets the middleware and handlers share one error shape.
// It is injected by the handler package to avoid an import cycle between
// auth (which produces the errors) and handler (which formats them).
type WriteAuthError func(w http.ResponseWriter, err error)

// RequireAuth enforces authentication on protected routes.
//
// It expects an "Authorization: Bearer <token>" header. Failures split into
// two categories, preserved deliberately because clients rely on the codes:
//
//   - no header, or a header with no token segment → 401 (no credential)
//   - a token that fails verification            → 400 (bad credential)
//
// On success the verified model.Principal is stored in the request context
// for handlers to read via PrincipalFromContext.
func RequireAuth(tokens *TokenService, writeErr WriteAuthError) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeErr(w, apperror.Unauthenticated("access denied, no token provided"))
				return
			}

			// Second segment of "Bearer <token>". A bare "Bearer" (or any
			// one-word header) means the credential itself is missing.
			parts := strings.SplitN(header, " ", 2)
			if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
				writeErr(w, apperror.Unauthenticated("access denied, token missing"))
				return
			}

			principal, err := tokens.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeErr(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin restricts a route to admin principals. It must be mounted
// after RequireAuth, which is what puts the principal in the context.
func RequireAdmin(writeErr WriteAuthError) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || !principal.IsAdmin {
				writeErr(w, apperror.Forbidden("access denied, admin privileges required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext retrieves the authenticated principal from the request
// context. Returns (zero, false) if the request never passed RequireAuth.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok && p.UserID != ""
}

// ContextWithPrincipal returns a context carrying the given principal.
// Exported for handler tests that call handlers directly without the
// middleware chain.
func ContextWithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
