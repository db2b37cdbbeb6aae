package description

import "fmt"

// ParseError reports a malformed or unrecognizable description document.
type ParseError struct {
	Doc string // which document shape was expected
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Doc, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *ParseError) Unwrap() error {
	return e.Err
}
