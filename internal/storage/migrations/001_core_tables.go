package migrations

import "gorm.io/gorm"

// migration001Up creates all core tables using GORM AutoMigrate. Ids are
// generated app-side in BeforeCreate hooks, so the schema carries no
// database-level uuid defaults and works on both postgres and sqlite.
func migration001Up(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// migration001Down drops all core tables
func migration001Down(db *gorm.DB) error {
	tables := []string{
		"assignments",
		"worker_certifications",
		"shifts",
		"workers",
		"admins",
	}

	for _, table := range tables {
		if err := db.Exec("DROP TABLE IF EXISTS " + table).Error; err != nil {
			return err
		}
	}

	return nil
}
