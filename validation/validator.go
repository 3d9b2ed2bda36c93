package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/jig/errors"
)

// FieldError is the failure of one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects field failures for checks that struct tags cannot express.
// The zero value is ready to use.
type Errors []FieldError

// Add records a failure for field.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Addf records a formatted failure for field.
func (e *Errors) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// Check records message for field when ok is false.
func (e *Errors) Check(ok bool, field, message string) {
	if !ok {
		e.Add(field, message)
	}
}

// Err returns nil when nothing was recorded, otherwise an INVALID_INPUT
// AppError listing every failure with the fields in its details.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	messages := make([]string, len(e))
	for i, fe := range e {
		messages[i] = fe.Field + ": " + fe.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", []FieldError(e))
}
