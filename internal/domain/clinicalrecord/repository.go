package clinicalrecord

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *ClinicalRecord) error
	GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*ClinicalRecord, error)

	// ListByPatient returns the patient's clinical history, newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ClinicalRecord, error)
}
