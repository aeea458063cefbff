package statement

import "fmt"

// ImportError rejects a whole file. No row of it is processed.
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import: %s: %v", e.Reason, e.Err)
	}

	return "import: " + e.Reason
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// RowParseError describes a single row that was skipped.
type RowParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *RowParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}

	return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}
