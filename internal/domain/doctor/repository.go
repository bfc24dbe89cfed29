package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new doctor. Returns ErrAlreadyExists on duplicate
	// document number.
	Create(ctx context.Context, d *Doctor) error

	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByDocumentNumber(ctx context.Context, documentNumber string) (*Doctor, error)
	List(ctx context.Context, q *ListDoctorsQuery) ([]*Doctor, error)
}
