package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/logger"
)

// PostgresShiftRepository implements ShiftRepository using GORM
type PostgresShiftRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db *gorm.DB) *PostgresShiftRepository {
	return &PostgresShiftRepository{
		db:  db,
		log: logger.Repository("shift"),
	}
}

func (r *PostgresShiftRepository) Create(s *shift.Shift) error {
	r.log.Debug("creating new shift", "shift_id", s.ID, "role", s.RoleNeeded, "capacity", s.Capacity)

	if err := s.Validate(); err != nil {
		r.log.Error("shift validation failed", "error", err, "shift_id", s.ID)
		return fmt.Errorf("shift validation failed: %w", err)
	}

	if err := r.db.Create(s).Error; err != nil {
		r.log.Error("failed to create shift", "error", err, "shift_id", s.ID)
		return fmt.Errorf("failed to create shift: %w", err)
	}

	r.log.Info("shift created successfully", "shift_id", s.ID, "role", s.RoleNeeded)
	return nil
}

func (r *PostgresShiftRepository) GetByID(id string) (*shift.Shift, error) {
	r.log.Debug("retrieving shift by ID", "shift_id", id)

	shiftID, err := uuid.Parse(id)
	if err != nil {
		r.log.Error("invalid shift ID format", "shift_id", id, "error", err)
		return nil, errors.New("invalid shift ID format")
	}

	var s shift.Shift
	if err := r.db.First(&s, "id = ?", shiftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("shift not found", "shift_id", id)
			return nil, errors.New("shift not found")
		}
		r.log.Error("failed to retrieve shift", "shift_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve shift: %w", err)
	}

	return &s, nil
}

func (r *PostgresShiftRepository) GetAll() ([]*shift.Shift, error) {
	r.log.Debug("retrieving all shifts")

	var shifts []*shift.Shift
	if err := r.db.Order("start_time ASC").Find(&shifts).Error; err != nil {
		r.log.Error("failed to retrieve shifts", "error", err)
		return nil, fmt.Errorf("failed to retrieve shifts: %w", err)
	}

	r.log.Debug("shifts retrieved successfully", "count", len(shifts))
	return shifts, nil
}

func (r *PostgresShiftRepository) UpdateStatus(shiftID string, status shift.Status) error {
	r.log.Debug("updating shift status", "shift_id", shiftID, "status", status)

	id, err := uuid.Parse(shiftID)
	if err != nil {
		r.log.Error("invalid shift ID format", "shift_id", shiftID, "error", err)
		return errors.New("invalid shift ID format")
	}

	if !status.IsValid() {
		r.log.Error("invalid shift status", "shift_id", shiftID, "status", status)
		return fmt.Errorf("invalid shift status: %s", status)
	}

	result := r.db.Model(&shift.Shift{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		r.log.Error("failed to update shift status", "shift_id", shiftID, "error", result.Error)
		return fmt.Errorf("failed to update shift status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("attempted to update status of non-existent shift", "shift_id", shiftID)
		return errors.New("shift not found")
	}

	r.log.Info("shift status updated", "shift_id", shiftID, "status", status)
	return nil
}
