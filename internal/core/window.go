package core

import "time"

// Window is an inclusive time range. End is the last instant that belongs
// to the window.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside w.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DayWindow covers the calendar day of t in UTC.
func DayWindow(t time.Time) Window {
	start := DateOf(t).Time
	return Window{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}
}

// MonthWindow covers the calendar month of t in UTC.
func MonthWindow(t time.Time) Window {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// YearWindow covers the calendar year of t in UTC.
func YearWindow(t time.Time) Window {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
}

// WeekWindow covers the Monday to Sunday week containing t in UTC.
func WeekWindow(t time.Time) Window {
	day := DateOf(t).Time
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Nanosecond)}
}
