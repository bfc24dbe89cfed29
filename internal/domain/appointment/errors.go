package appointment

import "errors"

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrSlotTaken         = errors.New("appointment time slot is already booked")
	ErrAlreadyAttended   = errors.New("appointment has already been attended")
	ErrInvalidSlot       = errors.New("time is not a bookable slot")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrSundayNotBookable = errors.New("appointments cannot be booked on Sundays")
	ErrSpecialtyRequired = errors.New("specialty is required")
)
