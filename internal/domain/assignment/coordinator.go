package assignment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/logger"
)

// AssignmentCoordinator orchestrates the legal creation of assignments:
// it serializes all attempts for the same worker behind the per-worker
// exclusive lock, re-checks conflicts inside the transaction, and either
// commits the new assignment or rolls everything back.
//
// Attempts for different workers are deliberately not serialized against
// each other, even when they target the same shift; see the capacity
// note on Assign.
type AssignmentCoordinator struct {
	store  Store
	engine *RuleEngine
	log    *log.Logger
}

// NewAssignmentCoordinator creates a coordinator with the default rules
func NewAssignmentCoordinator(store Store) *AssignmentCoordinator {
	return NewAssignmentCoordinatorWithRules(store, NewRuleEngine())
}

// NewAssignmentCoordinatorWithRules creates a coordinator with a custom
// rule engine.
func NewAssignmentCoordinatorWithRules(store Store, engine *RuleEngine) *AssignmentCoordinator {
	return &AssignmentCoordinator{
		store:  store,
		engine: engine,
		log:    logger.Coordinator("assign"),
	}
}

// Assign attempts to assign the worker to the shift on behalf of the
// acting admin. It acquires the per-worker lock, evaluates every
// eligibility rule against transactional reads, and creates the
// assignment only when no rule is violated.
//
// The lock is keyed by worker id, not shift id: two concurrent Assign
// calls for different workers against the same shift can both pass the
// capacity check before either commits. That gap is inherited behavior,
// kept observable rather than silently fixed.
func (c *AssignmentCoordinator) Assign(ctx context.Context, shiftID, workerID, assignedBy uuid.UUID) (*Assignment, error) {
	c.log.Debug("assigning worker to shift", "shift_id", shiftID, "worker_id", workerID, "assigned_by", assignedBy)

	if assignedBy == uuid.Nil {
		return nil, &ValidationError{Err: fmt.Errorf("assigned_by is required")}
	}

	var created *Assignment

	err := c.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.LockWorker(ctx, workerID); err != nil {
			return err
		}

		snap, err := loadSnapshot(ctx, tx, shiftID, workerID)
		if err != nil {
			return err
		}

		if !snap.Worker.Active {
			return &ValidationError{Err: fmt.Errorf("worker %s is not active", workerID)}
		}

		if conflicts := c.engine.Evaluate(*snap); len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}

		a := NewAssignment(shiftID, workerID, assignedBy)
		if err := a.Validate(); err != nil {
			return &ValidationError{Err: err}
		}

		if err := tx.CreateAssignment(ctx, a); err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}

		created = a
		return nil
	})
	if err != nil {
		err = classify("assign", err)
		c.log.Error("assignment failed", "shift_id", shiftID, "worker_id", workerID, "error", err)
		return nil, err
	}

	c.log.Info("worker assigned to shift",
		"assignment_id", created.ID, "shift_id", shiftID, "worker_id", workerID, "assigned_by", assignedBy)
	return created, nil
}

// CheckConflicts evaluates the eligibility rules without taking the
// per-worker lock or mutating anything. It exists so the admin UI can
// warn before submission; the result may be stale by the time Assign is
// actually called, which is why Assign re-checks under lock.
func (c *AssignmentCoordinator) CheckConflicts(ctx context.Context, shiftID, workerID uuid.UUID) ([]Conflict, error) {
	c.log.Debug("previewing conflicts", "shift_id", shiftID, "worker_id", workerID)

	var conflicts []Conflict

	err := c.store.InTx(ctx, func(tx TxStore) error {
		snap, err := loadSnapshot(ctx, tx, shiftID, workerID)
		if err != nil {
			return err
		}
		conflicts = c.engine.Evaluate(*snap)
		return nil
	})
	if err != nil {
		err = classify("check conflicts", err)
		c.log.Error("conflict preview failed", "shift_id", shiftID, "worker_id", workerID, "error", err)
		return nil, err
	}

	c.log.Debug("conflict preview evaluated", "shift_id", shiftID, "worker_id", workerID, "conflicts", len(conflicts))
	return conflicts, nil
}

// loadSnapshot re-reads the state the rules run against. Inside Assign
// this happens after the worker lock is held, so the snapshot cannot be
// invalidated by a concurrent attempt for the same worker.
func loadSnapshot(ctx context.Context, tx TxStore, shiftID, workerID uuid.UUID) (*Snapshot, error) {
	sh, err := tx.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	w, err := tx.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}

	active, err := tx.ListActiveAssignments(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active assignments: %w", err)
	}

	count, err := tx.CountActiveAssignments(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active assignments: %w", err)
	}

	return &Snapshot{
		Shift:            sh,
		Worker:           w,
		WorkerActive:     active,
		ShiftActiveCount: count,
	}, nil
}

// UnassignmentCoordinator orchestrates the safe, idempotent-failure
// removal of assignments under the same per-worker lock Assign uses, so
// removal cannot race a concurrent Assign or Unassign for that worker.
type UnassignmentCoordinator struct {
	store Store
	log   *log.Logger
}

// NewUnassignmentCoordinator creates an unassignment coordinator
func NewUnassignmentCoordinator(store Store) *UnassignmentCoordinator {
	return &UnassignmentCoordinator{
		store: store,
		log:   logger.Coordinator("unassign"),
	}
}

// Unassign cancels an assignment. Only assignments still in "assigned"
// status can be removed; anything else fails with InvalidStateError and
// never mutates state, so a double unassign is always a clean failure.
func (c *UnassignmentCoordinator) Unassign(ctx context.Context, assignmentID, unassignedBy uuid.UUID) error {
	c.log.Debug("unassigning", "assignment_id", assignmentID, "unassigned_by", unassignedBy)

	if unassignedBy == uuid.Nil {
		return &ValidationError{Err: fmt.Errorf("unassigned_by is required")}
	}

	err := c.store.InTx(ctx, func(tx TxStore) error {
		a, err := tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}

		// The lock key comes from the assignment's worker, so this
		// serializes against Assign calls for the same worker.
		if err := tx.LockWorker(ctx, a.WorkerID); err != nil {
			return err
		}

		// Re-read under the lock: the status may have changed while we
		// were waiting.
		a, err = tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}

		if a.Status != StatusAssigned {
			return &InvalidStateError{Status: a.Status}
		}

		a.MarkCancelled(unassignedBy)
		if err := tx.CancelAssignment(ctx, a); err != nil {
			return fmt.Errorf("failed to cancel assignment: %w", err)
		}

		return nil
	})
	if err != nil {
		err = classify("unassign", err)
		c.log.Error("unassignment failed", "assignment_id", assignmentID, "error", err)
		return err
	}

	c.log.Info("assignment cancelled", "assignment_id", assignmentID, "unassigned_by", unassignedBy)
	return nil
}
