package auth

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts. It applies whatever
// the configured options are.
const maxPasswordBytes = 72

// PasswordOptions is the password policy enforced at registration.
type PasswordOptions struct {
	RequiredLength         int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPasswordOptions requires six characters mixing digits, lower and
// upper case letters and at least one symbol.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{
		RequiredLength:         6,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// Check returns one IdentityError per unmet requirement. Length limits count
// bytes at the top because bcrypt does, and runes at the bottom.
func (o PasswordOptions) Check(password string) []IdentityError {
	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	var problems []IdentityError
	if len([]rune(password)) < o.RequiredLength {
		problems = append(problems, IdentityError{
			Code:        "PasswordTooShort",
			Description: fmt.Sprintf("Passwords must be at least %d characters.", o.RequiredLength),
		})
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, IdentityError{
			Code:        "PasswordTooLong",
			Description: fmt.Sprintf("Passwords must be at most %d bytes.", maxPasswordBytes),
		})
	}
	if o.RequireNonAlphanumeric && !hasSymbol {
		problems = append(problems, IdentityError{
			Code:        "PasswordRequiresNonAlphanumeric",
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}
	if o.RequireDigit && !hasDigit {
		problems = append(problems, IdentityError{
			Code:        "PasswordRequiresDigit",
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}
	if o.RequireLowercase && !hasLower {
		problems = append(problems, IdentityError{
			Code:        "PasswordRequiresLower",
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}
	if o.RequireUppercase && !hasUpper {
		problems = append(problems, IdentityError{
			Code:        "PasswordRequiresUpper",
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}
	return problems
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
