package routine

import (
	"fmt"
	"strings"
)

// Mode selects how day assignment and completion are tracked.
type Mode string

const (
	// ModeSimple has no day assignment; every routine applies to every day
	// and completion is one boolean.
	ModeSimple Mode = "simple"
	// ModeWeekly requires a day assignment; completion is one boolean shared
	// by all assigned days.
	ModeWeekly Mode = "weekly"
	// ModePerDay requires a day assignment; completion is tracked
	// independently for each assigned day.
	ModePerDay Mode = "per_day"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSimple, ModeWeekly, ModePerDay:
		return m, nil
	case "":
		return ModePerDay, nil
	}
	return "", fmt.Errorf("unknown tracker mode %q", s)
}

// Scheduled reports whether the mode uses day assignment.
func (m Mode) Scheduled() bool {
	return m == ModeWeekly || m == ModePerDay
}
