package appointment

import (
	"time"

	"github.com/google/uuid"
)

// State transitions possibilities:
//
//	scheduled → attended   (doctor submits the clinical record)
//	scheduled → (deleted)  (patient cancellation or admin correction)
//	attended  → (deleted)  (admin-only correction path)
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusAttended  Status = "attended"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusAttended, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	// Date is YYYY-MM-DD, Time is one of the fixed HH:MM grid values.
	// Both are kept as strings: the booking unit is a named grid slot,
	// not an arbitrary instant.
	Date string `gorm:"column:date;type:varchar(10);not null;index"`
	Time string `gorm:"column:time;type:varchar(5);not null"`

	Specialty string `gorm:"column:specialty;type:varchar(100);not null;index"`
	Notes     string `gorm:"column:notes;type:text"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index"`

	AttendedAt *time.Time `gorm:"column:attended_at"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

func (a *Appointment) CanAttend() bool {
	return a.Status == StatusScheduled
}

// MarkAttended transitions the appointment to its terminal attended state.
func (a *Appointment) MarkAttended() error {
	if !a.CanAttend() {
		return ErrAlreadyAttended
	}
	now := time.Now()
	a.Status = StatusAttended
	a.AttendedAt = &now
	return nil
}

type BookCommand struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      string
	Time      string
	Specialty string
	Notes     string
	CreatedBy uuid.UUID
}

type ListQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
	DateFrom  *string
	DateTo    *string
	Page      int
	PageSize  int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
