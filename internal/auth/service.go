package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/minimalapi/fornecedor/internal/validator"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrLockedOut is returned while an account is locked after too many
	// failed sign-ins, whatever the password.
	ErrLockedOut = errors.New("account locked out")
)

// IdentityError describes why an account could not be created.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CreateError is returned by Register when the input was well-formed but the
// account could not be created (password policy, duplicate email).
type CreateError struct {
	Errors []IdentityError
}

func (e *CreateError) Error() string {
	codes := make([]string, 0, len(e.Errors))
	for _, ie := range e.Errors {
		codes = append(codes, ie.Code)
	}
	return "creating account: " + strings.Join(codes, ", ")
}

// LockoutOptions controls how failed sign-ins lock an account.
type LockoutOptions struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

// DefaultLockoutOptions locks an account for five minutes after five failures.
func DefaultLockoutOptions() LockoutOptions {
	return LockoutOptions{MaxFailedAttempts: 5, Duration: 5 * time.Minute}
}

// RegisterRequest is the payload of POST /Api/Registro.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks the request shape. The password policy is applied later.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("email must be a valid email address"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.RuneLength(6, 100).Error("password must be between 6 and 100 characters"),
		),
		validation.Field(&r.ConfirmPassword,
			validation.By(func(value any) error {
				if s, _ := value.(string); s != r.Password {
					return errors.New("passwords do not match")
				}
				return nil
			}),
		),
	)
}

// LoginRequest is the payload of POST /Api/Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the request shape.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("email must be a valid email address"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.RuneLength(6, 100).Error("password must be between 6 and 100 characters"),
		),
	)
}

// Service registers and authenticates users.
type Service struct {
	userRepo   UserRepository
	bcryptCost int
	password   PasswordOptions
	lockout    LockoutOptions
	now        func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithPasswordOptions overrides the registration password policy.
func WithPasswordOptions(opts PasswordOptions) ServiceOption {
	return func(s *Service) { s.password = opts }
}

// WithLockout overrides the lockout threshold and duration.
func WithLockout(opts LockoutOptions) ServiceOption {
	return func(s *Service) { s.lockout = opts }
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService creates a new auth Service.
func NewService(userRepo UserRepository, bcryptCost int, opts ...ServiceOption) *Service {
	s := &Service{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		password:   DefaultPasswordOptions(),
		lockout:    DefaultLockoutOptions(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the request and creates a confirmed account. It returns
// a *validator.Error for malformed input and a *CreateError when the
// password policy fails or the email is taken; nothing is written in either
// case.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)

	problems := s.password.Check(req.Password)
	_, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		problems = append(problems, duplicateUserName(email))
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if len(problems) > 0 {
		return nil, &CreateError{Errors: problems}
	}

	hash, err := hashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:          email,
		PasswordHash:   hash,
		EmailConfirmed: true,
		LockoutEnabled: true,
		Claims:         []Claim{},
		Roles:          []string{},
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, &CreateError{Errors: []IdentityError{duplicateUserName(email)}}
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

// Authenticate checks the credentials and returns the user with its claims
// and roles loaded. It returns ErrLockedOut while the account is locked and
// ErrInvalidCredentials for an unknown email or a wrong password.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	now := s.now()
	if s.isLockedOut(u, now) {
		return nil, ErrLockedOut
	}

	if !verifyPassword(u.PasswordHash, req.Password) {
		return nil, s.recordFailure(ctx, u, now)
	}

	if u.AccessFailedCount > 0 {
		if err := s.userRepo.ResetAccessFailedCount(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("resetting failed access count: %w", err)
		}
		u.AccessFailedCount = 0
	}

	if err := s.loadGrants(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// AddClaim attaches a claim to the user.
func (s *Service) AddClaim(ctx context.Context, userID uuid.UUID, claim Claim) error {
	return s.userRepo.AddClaim(ctx, userID, claim)
}

// AddRole grants a role to the user.
func (s *Service) AddRole(ctx context.Context, userID uuid.UUID, role string) error {
	return s.userRepo.AddRole(ctx, userID, role)
}

// BootstrapAdmin makes sure an account with the given email exists and holds
// the Admin role and the ExcludeSupplier claim. An empty email or password
// disables it.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		u, err = s.Register(ctx, RegisterRequest{Email: email, Password: password, ConfirmPassword: password})
		if err != nil {
			return fmt.Errorf("registering admin: %w", err)
		}
		slog.Info("admin account created", "email", u.Email)
	} else if err != nil {
		return fmt.Errorf("finding admin: %w", err)
	}

	if err := s.userRepo.AddClaim(ctx, u.ID, Claim{Type: ClaimExcludeSupplier, Value: "true"}); err != nil {
		return err
	}
	return s.userRepo.AddRole(ctx, u.ID, RoleAdmin)
}

func (s *Service) isLockedOut(u *User, now time.Time) bool {
	return u.LockoutEnabled && u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

func (s *Service) recordFailure(ctx context.Context, u *User, now time.Time) error {
	if !u.LockoutEnabled || s.lockout.MaxFailedAttempts <= 0 {
		return ErrInvalidCredentials
	}

	lockoutEnd, err := s.userRepo.RecordFailedAccess(ctx, u.ID, s.lockout.MaxFailedAttempts, now.Add(s.lockout.Duration))
	if err != nil {
		return fmt.Errorf("recording failed access: %w", err)
	}

	if lockoutEnd != nil && lockoutEnd.After(now) {
		slog.Warn("account locked out", "userId", u.ID, "until", lockoutEnd.UTC())
		return ErrLockedOut
	}
	return ErrInvalidCredentials
}

func (s *Service) loadGrants(ctx context.Context, u *User) error {
	claims, err := s.userRepo.Claims(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("loading claims: %w", err)
	}
	roles, err := s.userRepo.Roles(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("loading roles: %w", err)
	}
	u.Claims = claims
	u.Roles = roles
	return nil
}

func duplicateUserName(email string) IdentityError {
	return IdentityError{
		Code:        "DuplicateUserName",
		Description: fmt.Sprintf("Username '%s' is already taken.", email),
	}
}
