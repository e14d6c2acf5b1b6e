package mssql

import (
	"fmt"

	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	gormstore "github.com/barekit/corpus/pkg/store/gorm"
)

// New creates a new MSSQL-backed passage store.
func New(dsn string) (*gormstore.Store, error) {
	db, err := gorm.Open(sqlserver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open mssql: %w", err)
	}
	return gormstore.New(db)
}
