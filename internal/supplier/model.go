package supplier

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

const (
	naturalPersonDocumentLength = 11 // CPF
	legalEntityDocumentLength   = 14 // CNPJ

	minNameLength = 2
	maxNameLength = 200
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Supplier represents a row in the suppliers table.
type Supplier struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	LegalEntity bool      `json:"legalEntity"`
	Document    *string   `json:"document"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the client-editable fields. Name length is measured after
// trimming surrounding whitespace. The document is optional, but when present
// its length must match the kind of supplier.
func (s Supplier) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name,
			validation.Required.Error("name is required"),
			validation.By(trimmedNameLength),
		),
		validation.Field(&s.Document,
			validation.NilOrNotEmpty.Error("document must not be empty when provided"),
			validation.Match(digitsOnly).Error("document must contain digits only"),
			validation.By(documentLength(s.LegalEntity)),
		),
	)
}

// Normalize trims surrounding whitespace from the name.
func (s *Supplier) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
}

func trimmedNameLength(value any) error {
	name, _ := value.(string)
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("name must not be blank")
	}
	if n := utf8.RuneCountInString(trimmed); n < minNameLength || n > maxNameLength {
		return fmt.Errorf("name must be between %d and %d characters", minNameLength, maxNameLength)
	}
	return nil
}

func documentLength(legalEntity bool) validation.RuleFunc {
	want := naturalPersonDocumentLength
	kind := "natural person"
	if legalEntity {
		want = legalEntityDocumentLength
		kind = "legal entity"
	}

	return func(value any) error {
		doc, ok := value.(*string)
		if !ok || doc == nil || *doc == "" {
			return nil
		}
		if len(*doc) != want {
			return fmt.Errorf("document of a %s must have %d digits", kind, want)
		}
		return nil
	}
}
