package database

import (
	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate auto-migrates the core models. Split out so tests can run the same
// schema against their own database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Member{},
		&model.RefreshToken{},
		&model.Project{},
		&model.PipelineStage{},
		&model.Task{},
		&model.ApprovalRequest{},
		&model.ApprovalResponse{},
		&model.ApproverDesignation{},
		&model.Attachment{},
		&model.AuditLog{},
	)
}
