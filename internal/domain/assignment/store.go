package assignment

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
)

// Store is the transactional persistence port the coordinators run on.
// Implementations must guarantee that a worker lock taken inside InTx is
// released on both commit and rollback.
type Store interface {
	// InTx runs fn inside a single transaction. A non-nil error from fn
	// rolls the transaction back and is returned unchanged.
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore is the view of the store available inside a transaction. All
// reads observe the transaction's snapshot.
type TxStore interface {
	GetShift(ctx context.Context, id uuid.UUID) (*shift.Shift, error)
	GetWorker(ctx context.Context, id uuid.UUID) (*worker.Worker, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*Assignment, error)

	// ListActiveAssignments returns the worker's assignments with status
	// "assigned", with each assignment's shift loaded.
	ListActiveAssignments(ctx context.Context, workerID uuid.UUID) ([]*Assignment, error)

	// CountActiveAssignments returns the number of assignments with
	// status "assigned" on the shift.
	CountActiveAssignments(ctx context.Context, shiftID uuid.UUID) (int, error)

	CreateAssignment(ctx context.Context, a *Assignment) error
	CancelAssignment(ctx context.Context, a *Assignment) error

	// LockWorker acquires the exclusive, blocking, process-wide lock for
	// the worker. Acquisition is reentrant-safe within one transaction
	// and bounded: contention past the configured wait yields a
	// *LockTimeoutError. The lock is released when the transaction
	// commits or rolls back.
	LockWorker(ctx context.Context, workerID uuid.UUID) error
}

// LockKey derives the integer lock key for a worker. Advisory locks are
// keyed by a bigint, so the UUID is collapsed through FNV-1a.
func LockKey(workerID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(workerID[:])
	return int64(h.Sum64())
}
