// Package daterange resolves report period presets into from/to dates.
package daterange

import (
	"fmt"
	"time"
)

// Preset codes accepted by Quick.
const (
	Q1        = "q1"
	Q2        = "q2"
	Q3        = "q3"
	Q4        = "q4"
	ThisMonth = "this_month"
	LastMonth = "last_month"
	ThisYear  = "this_year"
	YearToDay = "ytd"
)

const layout = "2006-01-02"

// Range is an inclusive report period.
type Range struct {
	From string
	To   string
}

// Quick resolves a preset for the given reference time. Quarters cover
// whole calendar quarters of the reference year; q1 of 2026 is exactly
// 2026-01-01 through 2026-03-31.
func Quick(code string, now time.Time) (Range, error) {
	year := now.Year()
	switch code {
	case Q1:
		return quarter(year, 1), nil
	case Q2:
		return quarter(year, 4), nil
	case Q3:
		return quarter(year, 7), nil
	case Q4:
		return quarter(year, 10), nil
	case ThisMonth:
		first := time.Date(year, now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Range{From: first.Format(layout), To: first.AddDate(0, 1, -1).Format(layout)}, nil
	case LastMonth:
		first := time.Date(year, now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return Range{From: first.Format(layout), To: first.AddDate(0, 1, -1).Format(layout)}, nil
	case ThisYear:
		return Range{
			From: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format(layout),
			To:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).Format(layout),
		}, nil
	case YearToDay:
		return Range{
			From: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format(layout),
			To:   now.Format(layout),
		}, nil
	}
	return Range{}, fmt.Errorf("unknown date preset %q", code)
}

func quarter(year int, startMonth time.Month) Range {
	from := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	return Range{
		From: from.Format(layout),
		To:   from.AddDate(0, 3, -1).Format(layout),
	}
}

// Presets lists the quick-picker codes in display order.
func Presets() []string {
	return []string{Q1, Q2, Q3, Q4, ThisMonth, LastMonth, ThisYear, YearToDay}
}

// Label returns the display label for a preset code.
func Label(code string) string {
	switch code {
	case Q1:
		return "Q1"
	case Q2:
		return "Q2"
	case Q3:
		return "Q3"
	case Q4:
		return "Q4"
	case ThisMonth:
		return "Denne måneden"
	case LastMonth:
		return "Forrige måned"
	case ThisYear:
		return "Hele året"
	case YearToDay:
		return "Hittil i år"
	}
	return code
}
