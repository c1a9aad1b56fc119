package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/apperror"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/models"
)

const (
	unknownPatientMessage = "patient_id does not reference an existing patient"
	maxStatusLength       = 30
)

type AppointmentService struct {
	repo
}

func NewAppointmentService(db *gorm.DB, auditor Auditor, logger *log.Logger) *AppointmentService {
	return &AppointmentService{repo: newRepo(db, auditor, logger, ModuleAppointments, "appointment")}
}

// FindAppointments lists appointments with their patient attached, latest
// date and time first.
func (s *AppointmentService) FindAppointments(ctx context.Context, filter AppointmentFilter) ([]AppointmentDTO, error) {
	query := s.db.WithContext(ctx).
		Table("appointments").
		Select(`appointments.id, appointments.patient_id, appointments.description,
			appointments.scheduled_date, appointments.scheduled_time::text AS scheduled_time,
			appointments.status, patients.name AS patient_name, patients.national_id AS patient_national_id`).
		Joins("JOIN patients ON patients.id = appointments.patient_id")
	if strings.TrimSpace(filter.PatientName) != "" {
		query = query.Where("patients.name ILIKE ?", containsPattern(filter.PatientName))
	}
	if strings.TrimSpace(filter.NationalID) != "" {
		query = query.Where("patients.national_id ILIKE ?", nationalIDPattern(filter.NationalID))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("appointments.status = ?", status)
	}

	var rows []models.AppointmentWithPatient
	if err := query.
		Order("appointments.scheduled_date DESC, appointments.scheduled_time DESC, appointments.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}

	result := make([]AppointmentDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, appointmentToDTO(row))
	}
	return result, nil
}

func (s *AppointmentService) CreateAppointment(ctx context.Context, input CreateAppointmentInput) (uint, error) {
	if input.PatientID == 0 || strings.TrimSpace(input.Description) == "" || input.Date == nil || strings.TrimSpace(input.Time) == "" {
		return 0, apperror.New(apperror.CodeValidation, "patient_id, description, date and time are required")
	}
	description, err := normalizeRequiredString(input.Description, "description", 100)
	if err != nil {
		return 0, err
	}
	clock, err := normalizeClock(input.Time)
	if err != nil {
		return 0, err
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.DefaultAppointmentStatus
	}
	if utf8.RuneCountInString(status) > maxStatusLength {
		return 0, apperror.New(apperror.CodeValidation, fmt.Sprintf("status must be at most %d characters", maxStatusLength))
	}

	appointment := models.Appointment{
		PatientID:     input.PatientID,
		Description:   description,
		ScheduledDate: *input.Date,
		ScheduledTime: clock,
		Status:        status,
	}
	if err := s.insert(ctx, &appointment, unknownPatientMessage); err != nil {
		return 0, err
	}

	s.record(ctx, audit.ActionInsert, "Scheduled appointment ID %d for patient ID %d", appointment.ID, appointment.PatientID)
	return appointment.ID, nil
}

// UpdateAppointmentStatus changes only the status column. Any non-empty text
// is accepted.
func (s *AppointmentService) UpdateAppointmentStatus(ctx context.Context, appointmentID uint, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return apperror.New(apperror.CodeValidation, "status is required")
	}
	if utf8.RuneCountInString(status) > maxStatusLength {
		return apperror.New(apperror.CodeValidation, fmt.Sprintf("status must be at most %d characters", maxStatusLength))
	}

	updates := map[string]any{"status": status}
	if err := s.updateByID(ctx, &models.Appointment{}, appointmentID, updates, unknownPatientMessage); err != nil {
		return err
	}

	s.record(ctx, audit.ActionUpdate, "Changed status of appointment ID %d to %q", appointmentID, status)
	return nil
}

func (s *AppointmentService) DeleteAppointment(ctx context.Context, appointmentID uint) error {
	if err := s.deleteByID(ctx, &models.Appointment{}, appointmentID, "other records still reference this appointment"); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, "Deleted appointment ID %d", appointmentID)
	return nil
}

func appointmentToDTO(row models.AppointmentWithPatient) AppointmentDTO {
	return AppointmentDTO{
		ID:                row.ID,
		PatientID:         row.PatientID,
		Description:       row.Description,
		Date:              row.ScheduledDate.Format(DateLayout),
		Time:              clockFromStore(row.ScheduledTime),
		Status:            row.Status,
		PatientName:       row.PatientName,
		PatientNationalID: row.PatientNationalID,
	}
}
