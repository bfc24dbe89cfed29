package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient. Returns ErrAlreadyExists on duplicate
	// document number.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	GetByDocumentNumber(ctx context.Context, documentNumber string) (*Patient, error)

	// Update applies partial updates to an existing patient record.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdatePatientCommand) (*Patient, error)

	// SoftDelete marks the patient as deleted; clinical history is retained.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]*Patient, error)
}
