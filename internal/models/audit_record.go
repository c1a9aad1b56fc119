package models

import "time"

type AuditRecord struct {
	ID         uint      `gorm:"primaryKey"`
	RecordedAt time.Time `gorm:"type:timestamp"`
	Actor      string    `gorm:"type:varchar(100)"`
	Module     string    `gorm:"type:varchar(100)"`
	Action     string    `gorm:"type:varchar(20)"`
	Details    string    `gorm:"type:text"`
}

func (AuditRecord) TableName() string { return "audit_records" }
