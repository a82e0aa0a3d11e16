package migrations

import (
	"github.com/gravadigital/rosterly-api/internal/auth"
	"github.com/gravadigital/rosterly-api/internal/domain/assignment"
	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
)

// AllModels returns every model managed by the core tables migration,
// ordered so referenced tables come first.
func AllModels() []any {
	return []any{
		&auth.Admin{},
		&worker.Worker{},
		&worker.Certification{},
		&shift.Shift{},
		&assignment.Assignment{},
	}
}
