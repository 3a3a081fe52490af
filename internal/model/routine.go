package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the icon group of a routine.
type Category string

const (
	CategoryWater  Category = "water"
	CategoryHealth Category = "health"
	CategoryMind   Category = "mind"
	CategoryHabit  Category = "habit"

	DefaultCategory = CategoryHabit
)

// ParseCategory maps an empty string to DefaultCategory.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case "":
		return DefaultCategory, nil
	case CategoryWater, CategoryHealth, CategoryMind, CategoryHabit:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Routine is a recurring task tracked for completion.
//
// Completed is used when completion is shared by all days. CompletedDays is
// used when completion is tracked per weekday and is always a subset of Days.
type Routine struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Category      Category  `json:"category"`
	Completed     bool      `json:"is_completed"`
	Days          DaySet    `json:"days"`
	CompletedDays DaySet    `json:"completed_days"`
	CreatedAt     time.Time `json:"created_at"`
}
