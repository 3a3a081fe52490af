package routine

import (
	"math"

	"routinetracker/internal/model"
)

// DayProgress is the completion summary of one weekday.
type DayProgress struct {
	Day       model.Weekday `json:"day"`
	Label     string        `json:"label"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Percent   int           `json:"percent"`
	Perfect   bool          `json:"perfect"`
}

// WeekProgress holds the seven days in display order, Monday first.
type WeekProgress struct {
	Days    [7]DayProgress `json:"days"`
	Average int            `json:"average"`
}

// Percent returns completed/total as a rounded whole percentage, 0 when total is 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return roundHalfUp(float64(completed) / float64(total) * 100)
}

// Average returns the rounded arithmetic mean, 0 for no values.
func Average(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return roundHalfUp(float64(sum) / float64(len(values)))
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// DayProgress summarizes the routines scheduled on day.
func (s *Store) DayProgress(day model.Weekday) DayProgress {
	p := DayProgress{Day: day, Label: day.String()}
	for _, r := range s.ForDay(day) {
		p.Total++
		if s.DoneOn(r, day) {
			p.Completed++
		}
	}
	p.Percent = Percent(p.Completed, p.Total)
	p.Perfect = p.Total > 0 && p.Percent == 100
	return p
}

// WeekProgress summarizes every weekday and averages their percentages.
func (s *Store) WeekProgress() WeekProgress {
	var w WeekProgress
	percents := make([]int, 0, len(model.WeekOrder))
	for i, day := range model.WeekOrder {
		w.Days[i] = s.DayProgress(day)
		percents = append(percents, w.Days[i].Percent)
	}
	w.Average = Average(percents)
	return w
}
