package models

import "github.com/shopspring/decimal"

type Role struct {
	ID          uint                `gorm:"primaryKey"`
	Name        string              `gorm:"type:varchar(100);not null"`
	Salary      decimal.NullDecimal `gorm:"type:numeric(10,2)"`
	Description string              `gorm:"type:text"`
}

func (Role) TableName() string { return "roles" }
