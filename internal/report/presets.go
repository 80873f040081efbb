package report

import (
	"errors"
	"time"

	"financeflow/internal/core"
)

const (
	PresetToday     = "today"
	PresetThisMonth = "this-month"
	PresetLastMonth = "last-month"
	PresetThisYear  = "this-year"
)

var ErrUnknownPreset = errors.New("unknown report period")

// Period is a named reporting window and the granularity used to chart it.
type Period struct {
	Name        string      `json:"name"`
	Window      core.Window `json:"window"`
	Granularity Granularity `json:"granularity"`
}

// Preset resolves a period name against now. An empty name means this-month.
func Preset(name string, now time.Time) (Period, error) {
	switch name {
	case PresetToday:
		return Period{Name: name, Window: core.DayWindow(now), Granularity: Hourly}, nil
	case PresetThisMonth, "":
		return Period{Name: PresetThisMonth, Window: core.MonthWindow(now), Granularity: Weekly}, nil
	case PresetLastMonth:
		first := core.MonthWindow(now).Start
		return Period{Name: name, Window: core.MonthWindow(first.AddDate(0, -1, 0)), Granularity: Weekly}, nil
	case PresetThisYear:
		return Period{Name: name, Window: core.YearWindow(now), Granularity: Monthly}, nil
	default:
		return Period{}, ErrUnknownPreset
	}
}
