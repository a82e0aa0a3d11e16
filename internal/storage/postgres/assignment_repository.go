package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/rosterly-api/internal/domain/assignment"
	"github.com/gravadigital/rosterly-api/internal/logger"
)

// PostgresAssignmentRepository implements AssignmentRepository using
// GORM. It only reads and performs external lifecycle status updates;
// creation and cancellation go through the coordinators and the Store.
type PostgresAssignmentRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *gorm.DB) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{
		db:  db,
		log: logger.Repository("assignment"),
	}
}

func (r *PostgresAssignmentRepository) GetByID(id string) (*assignment.Assignment, error) {
	r.log.Debug("retrieving assignment by ID", "assignment_id", id)

	assignmentID, err := uuid.Parse(id)
	if err != nil {
		r.log.Error("invalid assignment ID format", "assignment_id", id, "error", err)
		return nil, errors.New("invalid assignment ID format")
	}

	var a assignment.Assignment
	if err := r.db.Preload("Shift").Preload("Worker").First(&a, "id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("assignment not found", "assignment_id", id)
			return nil, errors.New("assignment not found")
		}
		r.log.Error("failed to retrieve assignment", "assignment_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve assignment: %w", err)
	}

	return &a, nil
}

func (r *PostgresAssignmentRepository) GetByShiftID(shiftID string) ([]*assignment.Assignment, error) {
	r.log.Debug("retrieving assignments by shift ID", "shift_id", shiftID)

	id, err := uuid.Parse(shiftID)
	if err != nil {
		r.log.Error("invalid shift ID format", "shift_id", shiftID, "error", err)
		return nil, fmt.Errorf("invalid shift ID format: %w", err)
	}

	var assignments []*assignment.Assignment
	if err := r.db.Preload("Worker").Where("shift_id = ?", id).Order("assigned_at ASC").Find(&assignments).Error; err != nil {
		r.log.Error("failed to retrieve assignments by shift ID", "shift_id", shiftID, "error", err)
		return nil, fmt.Errorf("failed to retrieve assignments by shift ID: %w", err)
	}

	r.log.Debug("assignments retrieved successfully", "shift_id", shiftID, "count", len(assignments))
	return assignments, nil
}

func (r *PostgresAssignmentRepository) GetByWorkerID(workerID string) ([]*assignment.Assignment, error) {
	r.log.Debug("retrieving assignments by worker ID", "worker_id", workerID)

	id, err := uuid.Parse(workerID)
	if err != nil {
		r.log.Error("invalid worker ID format", "worker_id", workerID, "error", err)
		return nil, fmt.Errorf("invalid worker ID format: %w", err)
	}

	var assignments []*assignment.Assignment
	if err := r.db.Preload("Shift").Where("worker_id = ?", id).Order("assigned_at ASC").Find(&assignments).Error; err != nil {
		r.log.Error("failed to retrieve assignments by worker ID", "worker_id", workerID, "error", err)
		return nil, fmt.Errorf("failed to retrieve assignments by worker ID: %w", err)
	}

	r.log.Debug("assignments retrieved successfully", "worker_id", workerID, "count", len(assignments))
	return assignments, nil
}

// UpdateStatus performs the external shift-lifecycle transitions
// (assigned -> completed or no_show). Cancellation is not accepted here;
// it belongs to the UnassignmentCoordinator.
func (r *PostgresAssignmentRepository) UpdateStatus(id uuid.UUID, status assignment.Status) error {
	r.log.Debug("updating assignment status", "assignment_id", id, "status", status)

	if status != assignment.StatusCompleted && status != assignment.StatusNoShow {
		r.log.Error("disallowed status transition", "assignment_id", id, "status", status)
		return fmt.Errorf("status %s cannot be set through the lifecycle endpoint", status)
	}

	result := r.db.Model(&assignment.Assignment{}).
		Where("id = ? AND status = ?", id, assignment.StatusAssigned).
		Update("status", status)
	if result.Error != nil {
		r.log.Error("failed to update assignment status", "assignment_id", id, "error", result.Error)
		return fmt.Errorf("failed to update assignment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("assignment not found or not in assigned status", "assignment_id", id)
		return errors.New("assignment is not in assigned status")
	}

	r.log.Info("assignment status updated", "assignment_id", id, "status", status)
	return nil
}
