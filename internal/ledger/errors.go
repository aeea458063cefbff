package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrReservedCategory = errors.New("reserved category cannot be deleted")
)

// ValidationError rejects an entry before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CommitError reports that a mutation could not be made durable. Nothing of
// the mutation is assumed to be stored.
type CommitError struct {
	Op  string
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: commit: %v", e.Op, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
