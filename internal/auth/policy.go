package auth

// Capability is what a route requires from the caller's identity.
type Capability int

const (
	// CapabilityAuthenticated is satisfied by any verified identity.
	CapabilityAuthenticated Capability = iota + 1
	// CapabilityDeleteSupplier requires the ExcludeSupplier claim.
	CapabilityDeleteSupplier
)

// String returns the policy name of the capability.
func (c Capability) String() string {
	switch c {
	case CapabilityAuthenticated:
		return "Authenticated"
	case CapabilityDeleteSupplier:
		return ClaimExcludeSupplier
	default:
		return "Unknown"
	}
}

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Rule is a predicate over a verified identity.
type Rule func(p *Principal) bool

// AnyIdentity allows every verified identity.
func AnyIdentity() Rule {
	return func(p *Principal) bool { return p != nil }
}

// RequireClaim allows identities carrying a claim of the given type, with any value.
func RequireClaim(claimType string) Rule {
	return func(p *Principal) bool { return p.HasClaim(claimType) }
}

// Policies maps capabilities to rules. It is built once at startup and only
// read afterwards, so it is safe for concurrent use.
type Policies struct {
	rules map[Capability]Rule
}

// NewPolicies copies rules into an immutable Policies value.
func NewPolicies(rules map[Capability]Rule) *Policies {
	p := &Policies{rules: make(map[Capability]Rule, len(rules))}
	for c, r := range rules {
		p.rules[c] = r
	}
	return p
}

// DefaultPolicies returns the policy table used by the HTTP API.
func DefaultPolicies() *Policies {
	return NewPolicies(map[Capability]Rule{
		CapabilityAuthenticated:  AnyIdentity(),
		CapabilityDeleteSupplier: RequireClaim(ClaimExcludeSupplier),
	})
}

// Evaluate decides whether principal satisfies capability. A missing
// principal or an unknown capability is denied.
func (p *Policies) Evaluate(c Capability, principal *Principal) Decision {
	if principal == nil {
		return Deny
	}
	rule, ok := p.rules[c]
	if !ok || rule == nil {
		return Deny
	}
	if rule(principal) {
		return Allow
	}
	return Deny
}
