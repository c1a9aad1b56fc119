package models

import "time"

type Patient struct {
	ID         uint       `gorm:"primaryKey"`
	Name       string     `gorm:"type:varchar(150);not null"`
	NationalID string     `gorm:"column:national_id;type:varchar(14);uniqueIndex;not null"`
	BirthDate  *time.Time `gorm:"type:date"`
	Phone      string     `gorm:"type:varchar(20)"`
	Email      string     `gorm:"type:varchar(150)"`
}

func (Patient) TableName() string { return "patients" }
