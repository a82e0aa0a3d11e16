package assignment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Not-found sentinels returned by the store when a referenced record
// does not exist.
var (
	ErrShiftNotFound      = errors.New("shift not found")
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// ValidationError reports malformed or invalid field data on the record
// being written. It is never retried and is surfaced verbatim.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConflictError carries every rule violation found for an attempted
// assignment. Callers may re-attempt after resolving the conflicts.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	msgs := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		msgs[i] = c.Message
	}
	return "assignment rejected: " + strings.Join(msgs, "; ")
}

// LockTimeoutError reports contention on the per-worker exclusive lock.
// It is the only retryable error kind.
type LockTimeoutError struct {
	WorkerID uuid.UUID
}

func (e *LockTimeoutError) Error() string {
	return "worker is being assigned by another admin; try again"
}

// InvalidStateError reports an operation attempted against an assignment
// that is not in the required lifecycle state.
type InvalidStateError struct {
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("assignment is not in assigned status (current: %s)", e.Status)
}

// UnexpectedError wraps any failure outside the taxonomy (store
// connectivity, broken invariants). It is logged, never retried, and
// surfaced as a generic failure.
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected failure during %s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// classify maps an error escaping a coordinator transaction onto the
// error taxonomy. Errors already in the taxonomy (and the not-found
// sentinels) pass through unchanged; everything else is wrapped as
// unexpected.
func classify(op string, err error) error {
	var (
		validationErr  *ValidationError
		conflictErr    *ConflictError
		lockTimeoutErr *LockTimeoutError
		invalidState   *InvalidStateError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &conflictErr),
		errors.As(err, &lockTimeoutErr),
		errors.As(err, &invalidState):
		return err
	case errors.Is(err, ErrShiftNotFound),
		errors.Is(err, ErrWorkerNotFound),
		errors.Is(err, ErrAssignmentNotFound):
		return err
	}

	return &UnexpectedError{Op: op, Err: err}
}
