package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minimalapi/fornecedor/internal/auth"
)

const principalKey contextKey = "principal"

// TokenParser verifies a raw bearer token. *auth.Issuer satisfies it.
type TokenParser interface {
	Parse(raw string) (*auth.Principal, error)
}

// Authenticate is middleware that reads the Authorization: Bearer header and
// stores the verified principal in the request context. A missing, malformed
// or invalid token leaves the request anonymous; Require decides whether the
// route accepts that.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := parser.Parse(raw)
			if err != nil {
				slog.Debug("bearer token rejected", "error", err, "requestId", GetRequestID(r.Context()))
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the authenticated principal from the request context.
func GetPrincipal(ctx context.Context) *auth.Principal {
	if p, ok := ctx.Value(principalKey).(*auth.Principal); ok {
		return p
	}
	return nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
