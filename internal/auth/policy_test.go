package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/minimalapi/fornecedor/internal/auth"
)

func TestDefaultPolicies_Evaluate(t *testing.T) {
	policies := auth.DefaultPolicies()

	plain := &auth.Principal{UserID: uuid.New(), Claims: map[string]string{}}
	withClaim := &auth.Principal{UserID: uuid.New(), Claims: map[string]string{auth.ClaimExcludeSupplier: "false"}}
	roleOnly := &auth.Principal{UserID: uuid.New(), Roles: []string{auth.RoleAdmin}}

	tests := []struct {
		name       string
		capability auth.Capability
		principal  *auth.Principal
		want       auth.Decision
	}{
		{name: "authenticated plain", capability: auth.CapabilityAuthenticated, principal: plain, want: auth.Allow},
		{name: "authenticated nil", capability: auth.CapabilityAuthenticated, principal: nil, want: auth.Deny},
		{name: "delete without claim", capability: auth.CapabilityDeleteSupplier, principal: plain, want: auth.Deny},
		{name: "delete with claim, any value", capability: auth.CapabilityDeleteSupplier, principal: withClaim, want: auth.Allow},
		{name: "admin role alone is not enough", capability: auth.CapabilityDeleteSupplier, principal: roleOnly, want: auth.Deny},
		{name: "unknown capability", capability: auth.Capability(99), principal: withClaim, want: auth.Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policies.Evaluate(tt.capability, tt.principal))
		})
	}
}

func TestNewPolicies_CopiesRules(t *testing.T) {
	rules := map[auth.Capability]auth.Rule{auth.CapabilityAuthenticated: auth.AnyIdentity()}
	policies := auth.NewPolicies(rules)

	delete(rules, auth.CapabilityAuthenticated)

	assert.Equal(t, auth.Allow, policies.Evaluate(auth.CapabilityAuthenticated, &auth.Principal{}))
}

func TestCapability_String(t *testing.T) {
	assert.Equal(t, "Authenticated", auth.CapabilityAuthenticated.String())
	assert.Equal(t, "ExcludeSupplier", auth.CapabilityDeleteSupplier.String())
	assert.Equal(t, "Unknown", auth.Capability(0).String())
}

func TestPrincipal_NilSafe(t *testing.T) {
	var p *auth.Principal
	assert.False(t, p.HasClaim(auth.ClaimExcludeSupplier))
	assert.False(t, p.HasRole(auth.RoleAdmin))
}
