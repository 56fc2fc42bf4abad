package database

import (
	"log"

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
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for every owned aggregate
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.Drug{},
		&model.Material{},
		&model.Supplier{},
		&model.Contract{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.QCSample{},
		&model.Deviation{},
		&model.WorkOrder{},
		&model.Batch{},
		&model.BatchStep{},
		&model.MaterialConsumption{},
		&model.BOM{},
		&model.BOMItem{},
		&model.Putaway{},
		&model.AuditLog{},
	)
}
