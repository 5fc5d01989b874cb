package xerr

import (
	"errors"
	"strings"
)

var (
	// ErrMissingEnvironmentVariable is returned when `env` names an unset variable.
	ErrMissingEnvironmentVariable = errors.New("missing environment variable")
	// ErrMissingArgument is returned when `arg` names an argument with no binding.
	ErrMissingArgument = errors.New("missing argument")
	// ErrMalformedBinding is returned for a positional CLI argument without ":=".
	ErrMalformedBinding = errors.New("malformed binding")
	// ErrUnimplementedInclude is returned when an <include> element is reached.
	ErrUnimplementedInclude = errors.New("include is not implemented")
	// ErrExpressionEvaluation is returned when an expression cannot be parsed,
	// evaluated or coerced to the expected type.
	ErrExpressionEvaluation = errors.New("expression evaluation failed")
)

// LocatedError pins an error to the place in a launch descriptor where it
// happened. Empty fields are omitted from the message.
type LocatedError struct {
	Document  string
	Element   string
	Attribute string
	Err       error
}

func (e *LocatedError) Error() string {
	var b strings.Builder
	if e.Document != "" {
		b.WriteString(e.Document)
		b.WriteString(": ")
	}
	if e.Element != "" {
		b.WriteString("<")
		b.WriteString(e.Element)
		b.WriteString(">")
		if e.Attribute != "" {
			b.WriteString(" attribute \"")
			b.WriteString(e.Attribute)
			b.WriteString("\"")
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LocatedError) Unwrap() error {
	return e.Err
}

// InDocument sets the document on err when it is (or wraps) a LocatedError
// without one, and otherwise wraps err in a new LocatedError.
func InDocument(path string, err error) error {
	if err == nil {
		return nil
	}
	var located *LocatedError
	if errors.As(err, &located) && located.Document == "" {
		located.Document = path
		return err
	}
	if located != nil {
		return err
	}
	return &LocatedError{Document: path, Err: err}
}
