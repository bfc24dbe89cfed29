package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicadelvalle/agenda-api/internal/domain/clinicalrecord"
)

type RecordRepo struct {
	db *gorm.DB
}

func NewRecordRepo(db *gorm.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

func (r *RecordRepo) Create(ctx context.Context, rec *clinicalrecord.ClinicalRecord) error {
	return wrapStoreErr(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *RecordRepo) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*clinicalrecord.ClinicalRecord, error) {
	var rec clinicalrecord.ClinicalRecord
	err := r.db.WithContext(ctx).First(&rec, "appointment_id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clinicalrecord.ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &rec, nil
}

func (r *RecordRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*clinicalrecord.ClinicalRecord, error) {
	var records []*clinicalrecord.ClinicalRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return records, nil
}
