package postgres

import (
	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/domain/assignment"
	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
)

// ShiftRepository defines the read/write surface for shifts outside the
// assignment core. Shift lifecycle transitions themselves live with the
// external event flows.
type ShiftRepository interface {
	Create(s *shift.Shift) error
	GetByID(id string) (*shift.Shift, error)
	GetAll() ([]*shift.Shift, error)
	UpdateStatus(shiftID string, status shift.Status) error
}

// WorkerRepository defines the methods for interacting with workers
type WorkerRepository interface {
	Create(w *worker.Worker) error
	GetByID(id string) (*worker.Worker, error)
	GetByEmail(email string) (*worker.Worker, error)
	GetAll() ([]*worker.Worker, error)
	AddCertification(c *worker.Certification) error
}

// AssignmentRepository defines the read surface for assignments. Writes
// go exclusively through the coordinators and their Store.
type AssignmentRepository interface {
	GetByID(id string) (*assignment.Assignment, error)
	GetByShiftID(shiftID string) ([]*assignment.Assignment, error)
	GetByWorkerID(workerID string) ([]*assignment.Assignment, error)
	UpdateStatus(id uuid.UUID, status assignment.Status) error
}
