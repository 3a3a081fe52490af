package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Weekday is a day index, 0=Sunday..6=Saturday, matching time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeekOrder is the display order of a week, Monday first.
var WeekOrder = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday(d).String()
}

// Today returns the weekday of t.
func Today(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

// DaySet is a set of weekdays stored as a bitmask.
type DaySet uint8

const allDays DaySet = 1<<7 - 1

// NewDaySet builds a set from day indices. Invalid indices return an error.
func NewDaySet(days ...Weekday) (DaySet, error) {
	var s DaySet
	for _, d := range days {
		if !d.Valid() {
			return 0, fmt.Errorf("invalid weekday %d", int(d))
		}
		s = s.Add(d)
	}
	return s, nil
}

// DaySetFromInts is NewDaySet for plain integers, as read from storage.
func DaySetFromInts(days []int) (DaySet, error) {
	ws := make([]Weekday, 0, len(days))
	for _, d := range days {
		ws = append(ws, Weekday(d))
	}
	return NewDaySet(ws...)
}

func (s DaySet) Has(d Weekday) bool {
	return d.Valid() && s&(1<<uint(d)) != 0
}

func (s DaySet) Add(d Weekday) DaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<uint(d)
}

func (s DaySet) Remove(d Weekday) DaySet {
	if !d.Valid() {
		return s
	}
	return s &^ (1 << uint(d))
}

// Toggle flips membership of d.
func (s DaySet) Toggle(d Weekday) DaySet {
	if s.Has(d) {
		return s.Remove(d)
	}
	return s.Add(d)
}

// Intersect keeps only days present in both sets.
func (s DaySet) Intersect(o DaySet) DaySet {
	return s & o & allDays
}

func (s DaySet) Empty() bool {
	return s&allDays == 0
}

func (s DaySet) Len() int {
	n := 0
	for d := Sunday; d <= Saturday; d++ {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Days lists members in index order, Sunday first.
func (s DaySet) Days() []Weekday {
	days := make([]Weekday, 0, 7)
	for d := Sunday; d <= Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Ints lists members as plain integers, for storage.
func (s DaySet) Ints() []int {
	days := s.Days()
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}

func (s DaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Ints())
}

// UnmarshalJSON accepts an array of day indices or a single index, the
// latter being how single-day rows are stored.
func (s *DaySet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		var single int
		if json.Unmarshal(data, &single) != nil {
			return err
		}
		days = []int{single}
	}
	set, err := DaySetFromInts(days)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
