package postgres

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/rosterly-api/internal/config"
	"github.com/gravadigital/rosterly-api/internal/logger"
)

// Container wires the database connection, the repositories and the
// transactional Store the coordinators run on.
type Container struct {
	db             *gorm.DB
	log            *log.Logger
	store          *Store
	shiftRepo      ShiftRepository
	workerRepo     WorkerRepository
	assignmentRepo AssignmentRepository
}

// NewContainer connects to the configured database, runs migrations and
// initializes all repositories.
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("container")
	log.Info("Initializing repository container...")

	db, err := Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		log.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	container := &Container{
		db:             db,
		log:            log,
		store:          NewStore(db, cfg.Locking.WorkerLockWait),
		shiftRepo:      NewShiftRepository(db),
		workerRepo:     NewWorkerRepository(db),
		assignmentRepo: NewAssignmentRepository(db),
	}

	if err := container.Health(); err != nil {
		log.Error("Container health check failed", "error", err)
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("Repository container initialized successfully")
	return container, nil
}

// DB returns the underlying database handle
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Store returns the transactional store for the coordinators
func (c *Container) Store() *Store {
	return c.store
}

// Shifts returns the shift repository
func (c *Container) Shifts() ShiftRepository {
	return c.shiftRepo
}

// Workers returns the worker repository
func (c *Container) Workers() WorkerRepository {
	return c.workerRepo
}

// Assignments returns the assignment repository
func (c *Container) Assignments() AssignmentRepository {
	return c.assignmentRepo
}

// Health checks the container's database connection
func (c *Container) Health() error {
	return HealthCheck(c.db)
}

// Close releases the container's database connection
func (c *Container) Close() error {
	return Close(c.db)
}
