package doctor

import "errors"

var (
	ErrNotFound      = errors.New("doctor not found")
	ErrAlreadyExists = errors.New("doctor with this document number already exists")
)
