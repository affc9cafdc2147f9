package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimalapi/fornecedor/internal/api/middleware"
	"github.com/minimalapi/fornecedor/internal/auth"
)

// stubParser accepts a fixed set of tokens.
type stubParser struct {
	tokens map[string]*auth.Principal
}

func (s *stubParser) Parse(raw string) (*auth.Principal, error) {
	if p, ok := s.tokens[raw]; ok {
		return p, nil
	}
	return nil, auth.ErrInvalidToken
}

var (
	plainPrincipal = &auth.Principal{UserID: uuid.New(), Email: "ana@example.com", Claims: map[string]string{}}
	adminPrincipal = &auth.Principal{
		UserID: uuid.New(),
		Email:  "admin@example.com",
		Roles:  []string{auth.RoleAdmin},
		Claims: map[string]string{auth.ClaimExcludeSupplier: "true"},
	}
	parser = &stubParser{tokens: map[string]*auth.Principal{
		"plain-token": plainPrincipal,
		"admin-token": adminPrincipal,
	}}
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env["error"].(map[string]any)["code"].(string)
}

// --- Authenticate Tests ---

func TestAuthenticate_SetsPrincipal(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   *auth.Principal
	}{
		{name: "valid bearer", header: "Bearer plain-token", want: plainPrincipal},
		{name: "scheme is case-insensitive", header: "bearer admin-token", want: adminPrincipal},
		{name: "no header", header: "", want: nil},
		{name: "other scheme", header: "Basic dXNlcjpwYXNz", want: nil},
		{name: "empty token", header: "Bearer ", want: nil},
		{name: "unknown token", header: "Bearer forged", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *auth.Principal
			handler := middleware.Authenticate(parser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = middleware.GetPrincipal(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, "Authenticate never rejects on its own")
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- Require Tests ---

func TestRequire(t *testing.T) {
	policies := auth.DefaultPolicies()

	tests := []struct {
		name       string
		capability auth.Capability
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "anonymous on authenticated route", capability: auth.CapabilityAuthenticated, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "invalid token on authenticated route", capability: auth.CapabilityAuthenticated, header: "Bearer forged", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "plain user on authenticated route", capability: auth.CapabilityAuthenticated, header: "Bearer plain-token", wantStatus: http.StatusOK},
		{name: "plain user on delete route", capability: auth.CapabilityDeleteSupplier, header: "Bearer plain-token", wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "claim holder on delete route", capability: auth.CapabilityDeleteSupplier, header: "Bearer admin-token", wantStatus: http.StatusOK},
		{name: "anonymous on delete route", capability: auth.CapabilityDeleteSupplier, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.Authenticate(parser)(middleware.Require(policies, tt.capability)(okHandler()))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequire_CustomPolicy(t *testing.T) {
	policies := auth.NewPolicies(map[auth.Capability]auth.Rule{
		auth.CapabilityAuthenticated: func(p *auth.Principal) bool { return p.HasRole(auth.RoleAdmin) },
	})
	handler := middleware.Authenticate(parser)(middleware.Require(policies, auth.CapabilityAuthenticated)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer plain-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIssuer_SatisfiesTokenParser(t *testing.T) {
	issuer, err := auth.NewIssuer(auth.TokenSettings{Secret: "s", Lifetime: time.Minute})
	require.NoError(t, err)

	var p middleware.TokenParser = issuer
	_, err = p.Parse("nope")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
