package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken indicates the bearer token failed verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenSettings configures token signing. PrivateKeyPEM selects RS256;
// otherwise Secret is used with HS256.
type TokenSettings struct {
	Secret        string
	PrivateKeyPEM string
	Issuer        string
	Audience      string
	Lifetime      time.Duration
}

// Token is the payload returned to clients after registration or login.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   float64   `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserToken   UserToken `json:"userToken"`
}

// UserToken echoes the identity embedded in the access token.
type UserToken struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Claims []Claim `json:"claims"`
}

// Principal is the verified identity carried by a bearer token.
type Principal struct {
	UserID    uuid.UUID
	Email     string
	Roles     []string
	Claims    map[string]string
	ExpiresAt time.Time
}

// HasClaim reports whether the principal carries a claim of the given type,
// whatever its value.
func (p *Principal) HasClaim(claimType string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Claims[claimType]
	return ok
}

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type tokenClaims struct {
	Email  string            `json:"email"`
	Roles  []string          `json:"role,omitempty"`
	Custom map[string]string `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies bearer tokens.
type Issuer struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
	audience  string
	lifetime  time.Duration
	now       func() time.Time
}

// IssuerOption configures Issuer behavior.
type IssuerOption func(*Issuer)

// WithIssuerClock overrides the time source used for iat/nbf/exp and for
// verification.
func WithIssuerClock(fn func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.now = fn
		}
	}
}

// NewIssuer builds an Issuer from settings.
func NewIssuer(settings TokenSettings, opts ...IssuerOption) (*Issuer, error) {
	if settings.Lifetime <= 0 {
		return nil, errors.New("token lifetime must be greater than zero")
	}

	i := &Issuer{
		issuer:   settings.Issuer,
		audience: settings.Audience,
		lifetime: settings.Lifetime,
		now:      time.Now,
	}

	switch {
	case strings.TrimSpace(settings.PrivateKeyPEM) != "":
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(settings.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parsing private key: %w", err)
		}
		i.method = jwt.SigningMethodRS256
		i.signKey = key
		i.verifyKey = &key.PublicKey
	case settings.Secret != "":
		i.method = jwt.SigningMethodHS256
		i.signKey = []byte(settings.Secret)
		i.verifyKey = []byte(settings.Secret)
	default:
		return nil, errors.New("a secret or a private key is required")
	}

	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue signs a token for u carrying its email, its custom claims and one
// role entry per role. It has no side effects.
func (i *Issuer) Issue(u *User) (*Token, error) {
	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(i.lifetime)

	custom := make(map[string]string, len(u.Claims))
	for _, c := range u.Claims {
		custom[c.Type] = c.Value
	}

	claims := tokenClaims{
		Email:  u.Email,
		Roles:  u.Roles,
		Custom: custom,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   u.ID.String(),
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.signKey)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		ExpiresIn:   i.lifetime.Seconds(),
		ExpiresAt:   expiresAt,
		UserToken: UserToken{
			ID:     u.ID.String(),
			Email:  u.Email,
			Claims: echoClaims(custom, u.Roles),
		},
	}, nil
}

// Parse verifies raw and returns the identity it carries.
func (i *Issuer) Parse(raw string) (*Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(i.audience))
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.verifyKey, nil
	}, parserOpts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	custom := claims.Custom
	if custom == nil {
		custom = map[string]string{}
	}

	return &Principal{
		UserID:    userID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		Claims:    custom,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func echoClaims(custom map[string]string, roles []string) []Claim {
	out := make([]Claim, 0, len(custom)+len(roles))
	for t, v := range custom {
		out = append(out, Claim{Type: t, Value: v})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Type < out[b].Type })
	for _, r := range roles {
		out = append(out, Claim{Type: "role", Value: r})
	}
	return out
}
