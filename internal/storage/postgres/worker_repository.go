package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/rosterly-api/internal/domain/worker"
	"github.com/gravadigital/rosterly-api/internal/logger"
)

// PostgresWorkerRepository implements WorkerRepository using GORM
type PostgresWorkerRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewWorkerRepository creates a new worker repository
func NewWorkerRepository(db *gorm.DB) *PostgresWorkerRepository {
	return &PostgresWorkerRepository{
		db:  db,
		log: logger.Repository("worker"),
	}
}

func (r *PostgresWorkerRepository) Create(w *worker.Worker) error {
	r.log.Debug("creating new worker", "worker_id", w.ID, "email", w.Email)

	if err := w.Validate(); err != nil {
		r.log.Error("worker validation failed", "error", err, "worker_id", w.ID)
		return fmt.Errorf("worker validation failed: %w", err)
	}

	if err := r.db.Create(w).Error; err != nil {
		r.log.Error("failed to create worker", "error", err, "worker_id", w.ID)
		return fmt.Errorf("failed to create worker: %w", err)
	}

	r.log.Info("worker created successfully", "worker_id", w.ID, "email", w.Email)
	return nil
}

func (r *PostgresWorkerRepository) GetByID(id string) (*worker.Worker, error) {
	r.log.Debug("retrieving worker by ID", "worker_id", id)

	workerID, err := uuid.Parse(id)
	if err != nil {
		r.log.Error("invalid worker ID format", "worker_id", id, "error", err)
		return nil, errors.New("invalid worker ID format")
	}

	var w worker.Worker
	if err := r.db.Preload("Certifications").First(&w, "id = ?", workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("worker not found", "worker_id", id)
			return nil, errors.New("worker not found")
		}
		r.log.Error("failed to retrieve worker", "worker_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve worker: %w", err)
	}

	return &w, nil
}

func (r *PostgresWorkerRepository) GetByEmail(email string) (*worker.Worker, error) {
	r.log.Debug("retrieving worker by email", "email", email)

	if email == "" {
		return nil, errors.New("email cannot be empty")
	}

	var w worker.Worker
	if err := r.db.Preload("Certifications").Where("email = ?", email).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("worker not found", "email", email)
			return nil, errors.New("worker not found")
		}
		r.log.Error("failed to retrieve worker by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to retrieve worker by email: %w", err)
	}

	return &w, nil
}

func (r *PostgresWorkerRepository) GetAll() ([]*worker.Worker, error) {
	r.log.Debug("retrieving all workers")

	var workers []*worker.Worker
	if err := r.db.Preload("Certifications").Order("name ASC").Find(&workers).Error; err != nil {
		r.log.Error("failed to retrieve workers", "error", err)
		return nil, fmt.Errorf("failed to retrieve workers: %w", err)
	}

	r.log.Debug("workers retrieved successfully", "count", len(workers))
	return workers, nil
}

func (r *PostgresWorkerRepository) AddCertification(c *worker.Certification) error {
	r.log.Debug("adding worker certification", "worker_id", c.WorkerID, "cert_id", c.CertID, "expires_at", c.ExpiresAt)

	if c.WorkerID == uuid.Nil {
		return errors.New("worker_id is required")
	}
	if c.CertID == uuid.Nil {
		return errors.New("cert_id is required")
	}
	if c.ExpiresAt.IsZero() {
		return errors.New("expires_at is required")
	}

	if err := r.db.Create(c).Error; err != nil {
		r.log.Error("failed to add certification", "error", err, "worker_id", c.WorkerID)
		return fmt.Errorf("failed to add certification: %w", err)
	}

	r.log.Info("certification added", "worker_id", c.WorkerID, "cert_id", c.CertID)
	return nil
}
