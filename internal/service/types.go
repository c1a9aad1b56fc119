package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
)

// Auditor receives one entry per successful mutation. *audit.Recorder
// satisfies it.
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) audit.Outcome
}

const (
	ModuleRoles        = "Roles"
	ModuleEmployees    = "Employees"
	ModulePatients     = "Patients"
	ModuleAppointments = "Appointments"
)

// -- Roles --

type RoleFilter struct {
	Name string
}

type CreateRoleInput struct {
	Name        string
	Salary      decimal.NullDecimal
	Description string
}

type UpdateRoleInput struct {
	Name        *string
	Salary      *decimal.Decimal
	Description *string
}

type RoleDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Salary      *string `json:"salary"`
	Description string  `json:"description"`
}

// -- Employees --

type EmployeeFilter struct {
	Name       string
	NationalID string
}

type CreateEmployeeInput struct {
	Name       string
	BirthDate  *time.Time
	Address    string
	NationalID string
	Email      string
	Phone      string
	RoleID     *uint
}

type UpdateEmployeeInput struct {
	Name       *string
	BirthDate  *time.Time
	Address    *string
	NationalID *string
	Email      *string
	Phone      *string
	RoleID     *uint
}

type EmployeeDTO struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	BirthDate  *string `json:"birth_date"`
	Address    string  `json:"address"`
	NationalID string  `json:"national_id"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	RoleID     *uint   `json:"role_id"`
	RoleName   *string `json:"role_name"`
}

// -- Patients --

type PatientFilter struct {
	Name       string
	NationalID string
}

type CreatePatientInput struct {
	Name       string
	NationalID string
	BirthDate  *time.Time
	Phone      string
	Email      string
}

type UpdatePatientInput struct {
	Name       *string
	NationalID *string
	BirthDate  *time.Time
	Phone      *string
	Email      *string
}

type PatientDTO struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	NationalID string  `json:"national_id"`
	BirthDate  *string `json:"birth_date"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
}

// -- Appointments --

type AppointmentFilter struct {
	PatientName string
	NationalID  string
	Status      string
}

type CreateAppointmentInput struct {
	PatientID   uint
	Description string
	Date        *time.Time
	Time        string
	Status      string
}

type AppointmentDTO struct {
	ID                uint   `json:"id"`
	PatientID         uint   `json:"patient_id"`
	Description       string `json:"description"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	Status            string `json:"status"`
	PatientName       string `json:"patient_name"`
	PatientNationalID string `json:"patient_national_id"`
}

// -- Counters --

type Counts struct {
	Roles        int64 `json:"roles"`
	Employees    int64 `json:"employees"`
	Patients     int64 `json:"patients"`
	Appointments int64 `json:"appointments"`
}

type RoleManager interface {
	FindRoles(ctx context.Context, filter RoleFilter) ([]RoleDTO, error)
	CreateRole(ctx context.Context, input CreateRoleInput) (uint, error)
	UpdateRole(ctx context.Context, roleID uint, input UpdateRoleInput) error
	DeleteRole(ctx context.Context, roleID uint) error
}

type EmployeeManager interface {
	FindEmployees(ctx context.Context, filter EmployeeFilter) ([]EmployeeDTO, error)
	CreateEmployee(ctx context.Context, input CreateEmployeeInput) (uint, error)
	UpdateEmployee(ctx context.Context, employeeID uint, input UpdateEmployeeInput) error
	DeleteEmployee(ctx context.Context, employeeID uint) error
}

type PatientManager interface {
	FindPatients(ctx context.Context, filter PatientFilter) ([]PatientDTO, error)
	GetPatient(ctx context.Context, patientID uint) (PatientDTO, error)
	CreatePatient(ctx context.Context, input CreatePatientInput) (uint, error)
	UpdatePatient(ctx context.Context, patientID uint, input UpdatePatientInput) error
	DeletePatient(ctx context.Context, patientID uint) error
}

type AppointmentManager interface {
	FindAppointments(ctx context.Context, filter AppointmentFilter) ([]AppointmentDTO, error)
	CreateAppointment(ctx context.Context, input CreateAppointmentInput) (uint, error)
	UpdateAppointmentStatus(ctx context.Context, appointmentID uint, status string) error
	DeleteAppointment(ctx context.Context, appointmentID uint) error
}

type Counter interface {
	Counts(ctx context.Context) (Counts, error)
}
