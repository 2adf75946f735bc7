package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/0xweirdlabs/fastapi.prod.starter/api/responses"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/identity"
	pkgerrors "github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/logger"
)

// authCookieName mirrors the cookie the browser flow sets at callback time.
const authCookieName = "Authorization"

type tokenResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Identity, error)
}

// Auth extracts the bearer token, resolves it to an identity, and seeds the
// request context. Requests that fail resolution are rejected here; handlers
// behind this middleware always see a non-nil identity.
func Auth(resolver tokenResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
				return
			}

			ident, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), ident)
			ctx = WithToken(ctx, token)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"subject":     ident.Subject,
					"auth_source": string(ident.Source),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken pulls the token from the Authorization header, falling back to
// the cookie the browser callback flow sets.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		if cookie, err := r.Cookie(authCookieName); err == nil {
			raw = strings.TrimSpace(cookie.Value)
		}
	}
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
