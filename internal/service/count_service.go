package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/models"
)

// CountService feeds the dashboard counters.
type CountService struct {
	db *gorm.DB
}

func NewCountService(db *gorm.DB) *CountService {
	return &CountService{db: db}
}

func (s *CountService) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	targets := []struct {
		model any
		dest  *int64
		name  string
	}{
		{&models.Role{}, &counts.Roles, "roles"},
		{&models.Employee{}, &counts.Employees, "employees"},
		{&models.Patient{}, &counts.Patients, "patients"},
		{&models.Appointment{}, &counts.Appointments, "appointments"},
	}

	for _, target := range targets {
		if err := s.db.WithContext(ctx).Model(target.model).Count(target.dest).Error; err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", target.name, err)
		}
	}
	return counts, nil
}
