package worker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Worker represents a person who can be assigned to shifts. Workers are
// owned by external worker-management flows; the assignment core only
// reads them.
type Worker struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email" gorm:"type:varchar(200);uniqueIndex"`
	Active    bool           `json:"active" gorm:"not null;default:true"`
	Skills    pq.StringArray `json:"skills" gorm:"type:text[]"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	Certifications []Certification `json:"certifications,omitempty" gorm:"foreignKey:WorkerID"`
}

// Certification records that a worker holds a certification of a given
// kind (CertID) until ExpiresAt.
type Certification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	WorkerID  uuid.UUID `json:"worker_id" gorm:"type:uuid;not null;index"`
	CertID    uuid.UUID `json:"cert_id" gorm:"type:uuid;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Worker) TableName() string {
	return "workers"
}

// TableName overrides the table name
func (Certification) TableName() string {
	return "worker_certifications"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (w *Worker) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// BeforeCreate will set a UUID rather than numeric ID.
func (c *Certification) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NewWorker creates an active worker
func NewWorker(name, email string, skills []string) *Worker {
	return &Worker{
		ID:     uuid.New(),
		Name:   name,
		Email:  email,
		Active: true,
		Skills: skills,
	}
}

// Validate checks if the worker data is valid
func (w *Worker) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}
	if w.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

// ValidThrough reports whether the certification is still valid at t,
// i.e. it expires at or after t.
func (c *Certification) ValidThrough(t time.Time) bool {
	return !c.ExpiresAt.Before(t)
}

// CertificationFor returns the worker's certification for the given
// certification kind with the latest expiry, or nil if the worker does
// not hold one at all.
func (w *Worker) CertificationFor(certID uuid.UUID) *Certification {
	var best *Certification
	for i := range w.Certifications {
		c := &w.Certifications[i]
		if c.CertID != certID {
			continue
		}
		if best == nil || c.ExpiresAt.After(best.ExpiresAt) {
			best = c
		}
	}
	return best
}
