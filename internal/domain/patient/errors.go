package patient

import "errors"

var (
	ErrNotFound            = errors.New("patient not found")
	ErrAlreadyExists       = errors.New("patient with this document number already exists")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrDocumentRequired    = errors.New("document number is required")
)
