package clinicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// Medication is one prescribed item inside a clinical record.
type Medication struct {
	Name      string `json:"name"`
	Dose      string `json:"dose"`      // e.g. "500mg"
	Frequency string `json:"frequency"` // e.g. "every 8 hours"
	Duration  string `json:"duration"`  // e.g. "7 days"
}

// MedicalLeave captures prescribed disability/leave days.
type MedicalLeave struct {
	Days      int    `json:"days"`
	Reason    string `json:"reason"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// ClinicalRecord is the structured outcome of an attended appointment. It
// lives in its own table keyed by appointment, never inside the appointment's
// free-text notes. Records are write-once: corrections go through a new
// appointment, not edits here.
type ClinicalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;uniqueIndex"`
	PatientID     uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID      uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	Diagnosis    string       `gorm:"column:diagnosis;type:text;not null"`
	Medications  []Medication `gorm:"column:medications;serializer:json"`
	Observations string       `gorm:"column:observations;type:text"`

	// Procedures holds CUPS procedure codes ordered during the visit.
	Procedures []string `gorm:"column:procedures;serializer:json"`

	Leave *MedicalLeave `gorm:"column:medical_leave;serializer:json"`

	Notes string `gorm:"column:notes;type:text"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (ClinicalRecord) TableName() string {
	return "clinical.records"
}

type CreateRecordCommand struct {
	AppointmentID uuid.UUID
	Diagnosis     string
	Medications   []Medication
	Observations  string
	Procedures    []string
	Leave         *MedicalLeave
	Notes         string
	CreatedBy     uuid.UUID
}
