package repository

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicadelvalle/agenda-api/internal/domain/appointment"
)

// slotConstraint is the partial unique index on (doctor_id, date, time)
// excluding cancelled rows; see database.createIndexes. It is what makes
// check-then-insert safe under concurrent bookings.
const slotConstraint = "uq_appointments_doctor_slot"

type AppointmentRepo struct {
	db *gorm.DB
}

func NewAppointmentRepo(db *gorm.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) CreateScheduled(ctx context.Context, a *appointment.Appointment) error {
	a.Status = appointment.StatusScheduled
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err, slotConstraint) {
			return appointment.ErrSlotTaken
		}
		return wrapStoreErr(err)
	}
	return nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &a, nil
}

func (r *AppointmentRepo) List(ctx context.Context, q *appointment.ListQuery) (*appointment.PagedAppointments, error) {
	tx := r.db.WithContext(ctx).Model(&appointment.Appointment{})

	if q.PatientID != nil {
		tx = tx.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		tx = tx.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		tx = tx.Where("date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		tx = tx.Where("date <= ?", *q.DateTo)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, wrapStoreErr(err)
	}

	var items []*appointment.Appointment
	err := tx.Order("date, time").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	return &appointment.PagedAppointments{
		Appointments: items,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   int(math.Ceil(float64(total) / float64(q.PageSize))),
	}, nil
}

func (r *AppointmentRepo) OccupiedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND date = ? AND status <> ?", doctorID, date, appointment.StatusCancelled).
		Pluck("time", &times).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return times, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":      a.Status,
			"attended_at": a.AttendedAt,
		})
	if res.Error != nil {
		return wrapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return wrapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrNotFound
	}
	return nil
}
