package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/apperror"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/models"
)

const unknownRoleMessage = "role_id does not reference an existing role"

type EmployeeService struct {
	repo
}

func NewEmployeeService(db *gorm.DB, auditor Auditor, logger *log.Logger) *EmployeeService {
	return &EmployeeService{repo: newRepo(db, auditor, logger, ModuleEmployees, "employee")}
}

// FindEmployees lists employees with the name of their role attached.
func (s *EmployeeService) FindEmployees(ctx context.Context, filter EmployeeFilter) ([]EmployeeDTO, error) {
	query := s.db.WithContext(ctx).
		Table("employees").
		Select("employees.*, roles.name AS role_name").
		Joins("LEFT JOIN roles ON roles.id = employees.role_id")
	if strings.TrimSpace(filter.Name) != "" {
		query = query.Where("employees.name ILIKE ?", containsPattern(filter.Name))
	}
	if strings.TrimSpace(filter.NationalID) != "" {
		query = query.Where("employees.national_id ILIKE ?", nationalIDPattern(filter.NationalID))
	}

	var rows []models.EmployeeWithRole
	if err := query.Order("employees.id DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}

	result := make([]EmployeeDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, employeeToDTO(row))
	}
	return result, nil
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (uint, error) {
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

	employee := models.Employee{
		Name:       name,
		BirthDate:  input.BirthDate,
		Address:    strings.TrimSpace(input.Address),
		NationalID: nationalID,
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		RoleID:     input.RoleID,
	}
	if err := s.insert(ctx, &employee, unknownRoleMessage); err != nil {
		return 0, err
	}

	s.record(ctx, audit.ActionInsert, "Created employee %q (ID %d)", employee.Name, employee.ID)
	return employee.ID, nil
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, employeeID uint, input UpdateEmployeeInput) error {
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
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Email != nil {
		updates["email"] = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.RoleID != nil {
		updates["role_id"] = *input.RoleID
	}

	if err := s.updateByID(ctx, &models.Employee{}, employeeID, updates, unknownRoleMessage); err != nil {
		return err
	}
	if len(updates) > 0 {
		s.record(ctx, audit.ActionUpdate, "Updated employee ID %d", employeeID)
	}
	return nil
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, employeeID uint) error {
	if err := s.deleteByID(ctx, &models.Employee{}, employeeID, "other records still reference this employee"); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, "Deleted employee ID %d", employeeID)
	return nil
}

func employeeToDTO(row models.EmployeeWithRole) EmployeeDTO {
	return EmployeeDTO{
		ID:         row.ID,
		Name:       row.Name,
		BirthDate:  formatDate(row.BirthDate),
		Address:    row.Address,
		NationalID: row.NationalID,
		Email:      row.Email,
		Phone:      row.Phone,
		RoleID:     row.RoleID,
		RoleName:   row.RoleName,
	}
}
