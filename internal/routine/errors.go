package routine

import "errors"

var (
	ErrEmptyContent    = errors.New("routine content is empty")
	ErrNoDays          = errors.New("no weekday selected")
	ErrInvalidDay      = errors.New("invalid weekday")
	ErrNotFound        = errors.New("routine not found")
	ErrDayNotScheduled = errors.New("routine is not scheduled on that weekday")
	ErrDaysNotUsed     = errors.New("day assignment is not used")
)
