package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries every failing field of a request, each with its
// messages in the order the checks ran.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// fieldErrors collects messages per field while a request is checked.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

func (f fieldErrors) has(field string) bool {
	return len(f[field]) > 0
}

// err returns nil when nothing failed.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// check runs a validator tag against value and records message on failure.
// It reports whether the value passed.
func (f fieldErrors) check(v *validator.Validate, field string, value any, tag, message string) bool {
	if err := v.Var(value, tag); err != nil {
		f.add(field, message)
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
