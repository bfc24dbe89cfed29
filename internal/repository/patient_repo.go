package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
)

type PatientRepo struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepo {
	return &PatientRepo{db: db}
}

func (r *PatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err, "") {
			return patient.ErrAlreadyExists
		}
		return wrapStoreErr(err)
	}
	return nil
}

func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).First(&p, "id = ? AND deleted_at IS NULL", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &p, nil
}

func (r *PatientRepo) GetByDocumentNumber(ctx context.Context, documentNumber string) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).
		First(&p, "document_number = ? AND deleted_at IS NULL", documentNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &p, nil
}

func (r *PatientRepo) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	updates := map[string]any{}
	if cmd.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*cmd.FirstName)
	}
	if cmd.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*cmd.LastName)
	}
	if cmd.Phone != nil {
		updates["phone"] = *cmd.Phone
	}
	if cmd.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*cmd.Email))
	}
	if cmd.Address != nil {
		updates["address"] = *cmd.Address
	}
	if cmd.City != nil {
		updates["city"] = *cmd.City
	}
	if cmd.EPS != nil {
		updates["eps"] = *cmd.EPS
	}
	if cmd.Notes != nil {
		updates["notes"] = *cmd.Notes
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&patient.Patient{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Updates(updates)
		if res.Error != nil {
			return nil, wrapStoreErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, patient.ErrNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *PatientRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&patient.Patient{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return wrapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return patient.ErrNotFound
	}
	return nil
}

func (r *PatientRepo) List(ctx context.Context) ([]*patient.Patient, error) {
	var patients []*patient.Patient
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("last_name, first_name").
		Find(&patients).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return patients, nil
}
