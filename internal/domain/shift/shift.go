package shift

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status represents the lifecycle stage of a shift
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Shift represents a single time-boxed staffing need with a capacity
// and an optional certification requirement. Times are stored in UTC
// and the interval is half-open: [StartTime, EndTime).
type Shift struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	EventName      string     `json:"event_name" gorm:"type:varchar(200)"`
	RoleNeeded     string     `json:"role_needed" gorm:"type:varchar(100);not null"`
	StartTime      time.Time  `json:"start_time" gorm:"not null"`
	EndTime        time.Time  `json:"end_time" gorm:"not null"`
	Capacity       int        `json:"capacity" gorm:"not null"`
	RequiredCertID *uuid.UUID `json:"required_cert_id" gorm:"type:uuid"`
	Status         Status     `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Shift) TableName() string {
	return "shifts"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewShift creates a shift in draft status
func NewShift(eventName, roleNeeded string, start, end time.Time, capacity int) *Shift {
	return &Shift{
		ID:         uuid.New(),
		EventName:  eventName,
		RoleNeeded: roleNeeded,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		Capacity:   capacity,
		Status:     StatusDraft,
	}
}

// Validate checks if the shift data is valid
func (s *Shift) Validate() error {
	if s.RoleNeeded == "" {
		return fmt.Errorf("role_needed is required")
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time are required")
	}
	if !s.EndTime.After(s.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if s.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}
	if !s.Status.IsValid() {
		return fmt.Errorf("invalid shift status: %s", s.Status)
	}
	return nil
}

// Overlaps reports whether two shifts occupy overlapping time.
// Intervals are half-open, so shifts that only touch at an endpoint
// (back-to-back) do not overlap.
func (s *Shift) Overlaps(other *Shift) bool {
	return other.StartTime.Before(s.EndTime) && other.EndTime.After(s.StartTime)
}

// TimeRange returns a human-readable description of the shift interval
func (s *Shift) TimeRange() string {
	return fmt.Sprintf("%s - %s",
		s.StartTime.UTC().Format("2006-01-02 15:04"),
		s.EndTime.UTC().Format("2006-01-02 15:04"))
}

// Duration returns the length of the shift
func (s *Shift) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
