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

type RoleService struct {
	repo
}

func NewRoleService(db *gorm.DB, auditor Auditor, logger *log.Logger) *RoleService {
	return &RoleService{repo: newRepo(db, auditor, logger, ModuleRoles, "role")}
}

func (s *RoleService) FindRoles(ctx context.Context, filter RoleFilter) ([]RoleDTO, error) {
	query := s.db.WithContext(ctx).Model(&models.Role{})
	if strings.TrimSpace(filter.Name) != "" {
		query = query.Where("name ILIKE ?", containsPattern(filter.Name))
	}

	var roles []models.Role
	if err := query.Order("id DESC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}

	result := make([]RoleDTO, 0, len(roles))
	for _, role := range roles {
		result = append(result, roleToDTO(role))
	}
	return result, nil
}

func (s *RoleService) CreateRole(ctx context.Context, input CreateRoleInput) (uint, error) {
	if strings.TrimSpace(input.Name) == "" || !input.Salary.Valid {
		return 0, apperror.New(apperror.CodeValidation, "name and salary are required")
	}
	name, err := normalizeRequiredString(input.Name, "name", 100)
	if err != nil {
		return 0, err
	}
	if input.Salary.Decimal.IsNegative() {
		return 0, apperror.New(apperror.CodeValidation, "salary must not be negative")
	}

	role := models.Role{
		Name:        name,
		Salary:      input.Salary,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.insert(ctx, &role, "invalid role reference"); err != nil {
		return 0, err
	}

	s.record(ctx, audit.ActionInsert, "Created role %q (ID %d)", role.Name, role.ID)
	return role.ID, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, roleID uint, input UpdateRoleInput) error {
	updates := map[string]any{}
	if input.Name != nil {
		name, err := normalizeRequiredString(*input.Name, "name", 100)
		if err != nil {
			return err
		}
		updates["name"] = name
	}
	if input.Salary != nil {
		if input.Salary.IsNegative() {
			return apperror.New(apperror.CodeValidation, "salary must not be negative")
		}
		updates["salary"] = *input.Salary
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}

	if err := s.updateByID(ctx, &models.Role{}, roleID, updates, "invalid role reference"); err != nil {
		return err
	}
	if len(updates) > 0 {
		s.record(ctx, audit.ActionUpdate, "Updated role ID %d", roleID)
	}
	return nil
}

func (s *RoleService) DeleteRole(ctx context.Context, roleID uint) error {
	if err := s.deleteByID(ctx, &models.Role{}, roleID, "employees are still linked to this role"); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, "Deleted role ID %d", roleID)
	return nil
}

func roleToDTO(role models.Role) RoleDTO {
	var salary *string
	if role.Salary.Valid {
		formatted := role.Salary.Decimal.StringFixed(2)
		salary = &formatted
	}

	return RoleDTO{
		ID:          role.ID,
		Name:        role.Name,
		Salary:      salary,
		Description: role.Description,
	}
}
