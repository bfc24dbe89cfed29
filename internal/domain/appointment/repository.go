package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateScheduled persists a new scheduled appointment. The insert and
	// the slot-uniqueness check commit atomically; a lost race against a
	// concurrent booking for the same (doctor, date, time) returns
	// ErrSlotTaken.
	CreateScheduled(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q *ListQuery) (*PagedAppointments, error)

	// OccupiedTimes returns the times (HH:MM, seconds truncated) of live
	// appointments for the doctor on the given date. Cancelled rows never
	// appear; attended appointments still occupy their slot.
	OccupiedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)

	// UpdateStatus persists a status transition on an existing appointment.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// Delete hard-deletes the appointment. Returns ErrNotFound if it does
	// not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
