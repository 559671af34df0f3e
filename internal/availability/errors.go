package availability

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid availability configuration")
	ErrInvalidInterval      = errors.New("invalid booked interval")
)
