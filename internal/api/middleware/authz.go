package middleware

import (
	"log/slog"
	"net/http"

	"github.com/minimalapi/fornecedor/internal/api/response"
	"github.com/minimalapi/fornecedor/internal/auth"
)

// Require returns middleware that evaluates capability against the principal
// set by Authenticate. Anonymous requests get 401, denied ones 403.
func Require(policies *auth.Policies, capability auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			principal := GetPrincipal(r.Context())
			if principal == nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "A valid bearer token is required", requestID)
				return
			}

			if policies.Evaluate(capability, principal) != auth.Allow {
				slog.Info("access denied",
					"capability", capability.String(),
					"userId", principal.UserID,
					"requestId", requestID,
				)
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
