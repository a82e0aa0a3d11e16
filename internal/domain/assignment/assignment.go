package assignment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
)

// Status represents the lifecycle state of an assignment.
//
// Every assignment enters at "assigned". "completed" and "no_show" are
// reached by external shift-lifecycle transitions; "cancelled" is reached
// through the UnassignmentCoordinator. No transition leaves a terminal
// state.
type Status string

const (
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusAssigned, StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status is terminal
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusNoShow || s == StatusCancelled
}

// Assignment binds one worker to one shift. Only assignments with
// status "assigned" count toward capacity and overlap checks.
type Assignment struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ShiftID      uuid.UUID  `json:"shift_id" gorm:"type:uuid;not null;index:idx_assignments_shift_status"`
	WorkerID     uuid.UUID  `json:"worker_id" gorm:"type:uuid;not null;index:idx_assignments_worker_status"`
	AssignedBy   uuid.UUID  `json:"assigned_by" gorm:"type:uuid;not null"`
	AssignedAt   time.Time  `json:"assigned_at" gorm:"not null"`
	Status       Status     `json:"status" gorm:"type:varchar(20);not null;default:'assigned';index:idx_assignments_shift_status;index:idx_assignments_worker_status"`
	CancelledBy  *uuid.UUID `json:"cancelled_by" gorm:"type:uuid"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Shift  shift.Shift   `json:"shift,omitempty" gorm:"foreignKey:ShiftID"`
	Worker worker.Worker `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
}

// TableName overrides the table name
func (Assignment) TableName() string {
	return "assignments"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NewAssignment creates an assignment in the only valid entry state
func NewAssignment(shiftID, workerID, assignedBy uuid.UUID) *Assignment {
	return &Assignment{
		ID:         uuid.New(),
		ShiftID:    shiftID,
		WorkerID:   workerID,
		AssignedBy: assignedBy,
		AssignedAt: time.Now().UTC(),
		Status:     StatusAssigned,
	}
}

// Validate checks if the assignment data is valid
func (a *Assignment) Validate() error {
	if a.ShiftID == uuid.Nil {
		return fmt.Errorf("shift_id is required")
	}
	if a.WorkerID == uuid.Nil {
		return fmt.Errorf("worker_id is required")
	}
	if a.AssignedBy == uuid.Nil {
		return fmt.Errorf("assigned_by is required")
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("invalid assignment status: %s", a.Status)
	}
	return nil
}

// IsActive reports whether the assignment counts toward capacity and
// overlap checks.
func (a *Assignment) IsActive() bool {
	return a.Status == StatusAssigned
}

// MarkCancelled transitions the assignment to the cancelled terminal
// state, recording who removed it and when.
func (a *Assignment) MarkCancelled(cancelledBy uuid.UUID) {
	now := time.Now().UTC()
	a.Status = StatusCancelled
	a.CancelledBy = &cancelledBy
	a.CancelledAt = &now
}
