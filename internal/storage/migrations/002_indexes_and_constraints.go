package migrations

import "gorm.io/gorm"

// migration002Up adds the lookup indexes the conflict checks lean on and
// the database-level guards behind the core invariants.
func migration002Up(db *gorm.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_assignments_worker_status ON assignments (worker_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_shift_status ON assignments (shift_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_certifications_worker ON worker_certifications (worker_id, cert_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_time ON shifts (start_time, end_time)`,
		// One live assignment per worker/shift pair; cancelled rows are
		// kept for the audit trail and excluded here. Partial indexes
		// work on both backends.
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_assignments_active_pair ON assignments (shift_id, worker_id) WHERE status = 'assigned'`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	if isPostgres(db) {
		constraints := []string{
			`ALTER TABLE shifts DROP CONSTRAINT IF EXISTS chk_shifts_capacity`,
			`ALTER TABLE shifts ADD CONSTRAINT chk_shifts_capacity CHECK (capacity > 0)`,
			`ALTER TABLE shifts DROP CONSTRAINT IF EXISTS chk_shifts_interval`,
			`ALTER TABLE shifts ADD CONSTRAINT chk_shifts_interval CHECK (end_time > start_time)`,
		}

		for _, c := range constraints {
			if err := db.Exec(c).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// migration002Down removes the indexes and constraints
func migration002Down(db *gorm.DB) error {
	statements := []string{
		`DROP INDEX IF EXISTS idx_assignments_worker_status`,
		`DROP INDEX IF EXISTS idx_assignments_shift_status`,
		`DROP INDEX IF EXISTS idx_certifications_worker`,
		`DROP INDEX IF EXISTS idx_shifts_time`,
		`DROP INDEX IF EXISTS uniq_assignments_active_pair`,
	}

	if isPostgres(db) {
		statements = append(statements,
			`ALTER TABLE shifts DROP CONSTRAINT IF EXISTS chk_shifts_capacity`,
			`ALTER TABLE shifts DROP CONSTRAINT IF EXISTS chk_shifts_interval`,
		)
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
