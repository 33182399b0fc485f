package parser

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/yukr-lang/yukr/internal/token"
)

// MaxErrors is the maximum number of errors to collect before stopping.
const MaxErrors = 10

// Error is a syntax error found while lexing or parsing.
type Error struct {
	// Type of the error, e.g. "parse error"
	Type string
	// The error message
	Message string
	// Where in the input the error was found
	Position token.Position
	// The wrapped error, for lexer failures
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Position, e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// formatErrors renders one error per line, without the count header
// multierror uses by default.
func formatErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func newErrors(errs ...error) *multierror.Error {
	result := &multierror.Error{ErrorFormat: formatErrors}
	return multierror.Append(result, errs...)
}
