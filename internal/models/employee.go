package models

import "time"

type Employee struct {
	ID         uint       `gorm:"primaryKey"`
	Name       string     `gorm:"type:varchar(150);not null"`
	BirthDate  *time.Time `gorm:"type:date"`
	Address    string     `gorm:"type:varchar(255)"`
	NationalID string     `gorm:"column:national_id;type:varchar(14);uniqueIndex"`
	Email      string     `gorm:"type:varchar(150)"`
	Phone      string     `gorm:"type:varchar(20)"`
	RoleID     *uint      `gorm:"index"`
}

func (Employee) TableName() string { return "employees" }

// EmployeeWithRole is the read model returned by employee searches.
type EmployeeWithRole struct {
	Employee
	RoleName *string
}
