package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/apperror"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/models"
)

type PatientService struct {
	repo
}

func NewPatientService(db *gorm.DB, auditor Auditor, logger *log.Logger) *PatientService {
	return &PatientService{repo: newRepo(db, auditor, logger, ModulePatients, "patient")}
}

func (s *PatientService) FindPatients(ctx context.Context, filter PatientFilter) ([]PatientDTO, error) {
	query := s.db.WithContext(ctx).Model(&models.Patient{})
	if strings.TrimSpace(filter.Name) != "" {
		query = query.Where("name ILIKE ?", containsPattern(filter.Name))
	}
	if strings.TrimSpace(filter.NationalID) != "" {
		query = query.Where("national_id ILIKE ?", nationalIDPattern(filter.NationalID))
	}

	var patients []models.Patient
	if err := query.Order("id DESC").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("find patients: %w", err)
	}

	result := make([]PatientDTO, 0, len(patients))
	for _, patient := range patients {
		result = append(result, patientToDTO(patient))
	}
	return result, nil
}

func (s *PatientService) GetPatient(ctx context.Context, patientID uint) (PatientDTO, error) {
	var patient models.Patient
	if err := s.db.WithContext(ctx).First(&patient, patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PatientDTO{}, apperror.NotFound("patient")
		}
		return PatientDTO{}, fmt.Errorf("load patient: %w", err)
	}
	return patientToDTO(patient), nil
}

func (s *PatientService) CreatePatient(ctx context.Context, input CreatePatientInput) (uint, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.NationalID) == "" {
		return 0, apperror.New(apperror.CodeValidation, "name and national_id are required")
	}
	name, err := normalizeRequiredString(input.Name, "name", 150)
	if err != nil {
		return 0, err
	}
	nationalID, err := normalizeNationalID(input.NationalID)
	if err != nil {
		return 0, err
	}

	patient := models.Patient{
		Name:       name,
		NationalID: nationalID,
		BirthDate:  input.BirthDate,
		Phone:      strings.TrimSpace(input.Phone),
		Email:      strings.TrimSpace(input.Email),
	}
	if err := s.insert(ctx, &patient, "invalid patient reference"); err != nil {
		return 0, err
	}

	s.record(ctx, audit.ActionInsert, "Created patient %q (ID %d)", patient.Name, patient.ID)
	return patient.ID, nil
}

func (s *PatientService) UpdatePatient(ctx context.Context, patientID uint, input UpdatePatientInput) error {
	updates := map[string]any{}
	if input.Name != nil {
		name, err := normalizeRequiredString(*input.Name, "name", 150)
		if err != nil {
			return err
		}
		updates["name"] = name
	}
	if input.NationalID != nil {
		nationalID, err := normalizeNationalID(*input.NationalID)
		if err != nil {
			return err
		}
		updates["national_id"] = nationalID
	}
	if input.BirthDate != nil {
		updates["birth_date"] = *input.BirthDate
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		updates["email"] = strings.TrimSpace(*input.Email)
	}

	if err := s.updateByID(ctx, &models.Patient{}, patientID, updates, "invalid patient reference"); err != nil {
		return err
	}
	if len(updates) > 0 {
		s.record(ctx, audit.ActionUpdate, "Updated patient ID %d", patientID)
	}
	return nil
}

// DeletePatient removes the patient; the store cascades to its appointments.
func (s *PatientService) DeletePatient(ctx context.Context, patientID uint) error {
	if err := s.deleteByID(ctx, &models.Patient{}, patientID, "other records still reference this patient"); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, "Deleted patient ID %d", patientID)
	return nil
}

func patientToDTO(patient models.Patient) PatientDTO {
	return PatientDTO{
		ID:         patient.ID,
		Name:       patient.Name,
		NationalID: patient.NationalID,
		BirthDate:  formatDate(patient.BirthDate),
		Phone:      patient.Phone,
		Email:      patient.Email,
	}
}
