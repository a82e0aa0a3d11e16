package storage

import (
	"fmt"

	"github.com/gravadigital/rosterly-api/internal/config"
	"github.com/gravadigital/rosterly-api/internal/storage/postgres"
)

// StorageType represents the type of storage backend
type StorageType string

const (
	// StorageTypePostgres is the production PostgreSQL backend
	StorageTypePostgres StorageType = "postgres"
	// StorageTypeSQLite is the file-backed backend for local
	// development and CI.
	StorageTypeSQLite StorageType = "sqlite"
)

// GetSupportedTypes returns the supported storage types
func GetSupportedTypes() []StorageType {
	return []StorageType{StorageTypePostgres, StorageTypeSQLite}
}

// ValidateStorageType validates if a storage type is supported
func ValidateStorageType(storageType string) (StorageType, error) {
	st := StorageType(storageType)
	for _, supported := range GetSupportedTypes() {
		if st == supported {
			return st, nil
		}
	}
	return "", fmt.Errorf("unsupported storage type: %s. Supported types: %v", storageType, GetSupportedTypes())
}

// NewContainer validates the configured backend and builds the
// repository container for it.
func NewContainer(cfg *config.Config) (*postgres.Container, error) {
	if _, err := ValidateStorageType(cfg.DB.Driver); err != nil {
		return nil, err
	}
	return postgres.NewContainer(cfg)
}
