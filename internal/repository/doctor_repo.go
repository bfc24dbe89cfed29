package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicadelvalle/agenda-api/internal/domain/doctor"
)

type DoctorRepo struct {
	db *gorm.DB
}

func NewDoctorRepo(db *gorm.DB) *DoctorRepo {
	return &DoctorRepo{db: db}
}

func (r *DoctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if isUniqueViolation(err, "") {
			return doctor.ErrAlreadyExists
		}
		return wrapStoreErr(err)
	}
	return nil
}

func (r *DoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).First(&d, "id = ? AND deleted_at IS NULL", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &d, nil
}

func (r *DoctorRepo) GetByDocumentNumber(ctx context.Context, documentNumber string) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).
		First(&d, "document_number = ? AND deleted_at IS NULL", documentNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &d, nil
}

func (r *DoctorRepo) List(ctx context.Context, q *doctor.ListDoctorsQuery) ([]*doctor.Doctor, error) {
	tx := r.db.WithContext(ctx).Where("deleted_at IS NULL")
	if q.Sede != "" {
		tx = tx.Where("sede = ?", q.Sede)
	}
	if q.Specialty != "" {
		tx = tx.Where("specialty = ?", q.Specialty)
	}

	var doctors []*doctor.Doctor
	if err := tx.Order("last_name, first_name").Find(&doctors).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return doctors, nil
}
