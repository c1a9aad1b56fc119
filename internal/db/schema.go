package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// schemaStatements are applied in order, so referenced tables come first.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		salary NUMERIC(10,2),
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id SERIAL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		birth_date DATE,
		address VARCHAR(255),
		national_id VARCHAR(14) UNIQUE,
		email VARCHAR(150),
		phone VARCHAR(20),
		role_id INTEGER REFERENCES roles(id) ON DELETE RESTRICT
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id SERIAL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		national_id VARCHAR(14) UNIQUE NOT NULL,
		birth_date DATE,
		phone VARCHAR(20),
		email VARCHAR(150)
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id SERIAL PRIMARY KEY,
		patient_id INTEGER NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		description VARCHAR(100) NOT NULL,
		scheduled_date DATE NOT NULL,
		scheduled_time TIME NOT NULL,
		status VARCHAR(30) DEFAULT 'Scheduled'
	)`,
	// recorded_at has no database default: the recorder supplies the
	// regional wall clock itself.
	`CREATE TABLE IF NOT EXISTS audit_records (
		id SERIAL PRIMARY KEY,
		recorded_at TIMESTAMP,
		actor VARCHAR(100),
		module VARCHAR(100),
		action VARCHAR(20),
		details TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_records_recorded_at ON audit_records (recorded_at)`,
}

// Bootstrap creates any missing tables. It is idempotent and runs on every start.
func Bootstrap(ctx context.Context, database *gorm.DB) error {
	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range schemaStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("bootstrap schema: %w", err)
			}
		}
		return nil
	})
}
