package parser

import "fmt"

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	// KindJSONSyntax means the input is not valid JSON under any strategy.
	KindJSONSyntax ErrorKind = iota
	// KindInvalidFormat means the JSON is valid but carries no extractable
	// structure. Reserved for stricter validation; the normalizer does not
	// currently construct it.
	KindInvalidFormat
)

// ParseError is the terminal failure for a whole batch. There is no partial
// success: either every record normalizes or the caller gets this error.
type ParseError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindInvalidFormat:
		return fmt.Sprintf("invalid log format: %s", e.Msg)
	default:
		return fmt.Sprintf("JSON parsing error: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func syntaxError(err error) *ParseError {
	return &ParseError{Kind: KindJSONSyntax, Err: err}
}
