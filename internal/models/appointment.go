package models

import "time"

const DefaultAppointmentStatus = "Scheduled"

type Appointment struct {
	ID            uint      `gorm:"primaryKey"`
	PatientID     uint      `gorm:"not null;index"`
	Description   string    `gorm:"type:varchar(100);not null"`
	ScheduledDate time.Time `gorm:"type:date;not null"`
	// ScheduledTime holds a time of day as HH:MM:SS.
	ScheduledTime string `gorm:"type:time;not null"`
	Status        string `gorm:"type:varchar(30);default:Scheduled"`
}

func (Appointment) TableName() string { return "appointments" }

// AppointmentWithPatient is the read model returned by appointment searches.
type AppointmentWithPatient struct {
	Appointment
	PatientName       string
	PatientNationalID string
}
