package clinicalrecord

import "errors"

var (
	ErrNotFound          = errors.New("clinical record not found")
	ErrDiagnosisRequired = errors.New("diagnosis is required")
)
