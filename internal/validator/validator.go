// Package validator turns struct-level validation rules into a field error map
// that handlers can return as-is.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Errors maps a JSON field name to the messages reported for it.
type Errors map[string][]string

// Error is returned by services when input fails validation. No mutation has
// happened when it is returned.
type Error struct {
	Fields Errors
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Check validates v. It returns nil when v is valid, a *Error carrying the
// field map when a rule fails, and the raw error for anything else (for
// example a rule that could not be evaluated).
func Check(v validation.Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("running validation: %w", err)
	}

	fields := Errors{}
	flatten("", verrs, fields)
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}

// AsError reports whether err carries field errors and returns them.
func AsError(err error) (Errors, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

func flatten(prefix string, verrs validation.Errors, out Errors) {
	for field, err := range verrs {
		if err == nil {
			continue
		}
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			flatten(key, nested, out)
			continue
		}
		out[key] = append(out[key], err.Error())
	}
}
