package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// PeriodKind names a calendar filter for bank transaction listings.
type PeriodKind string

const (
	PeriodDate  PeriodKind = "date"
	PeriodMonth PeriodKind = "month"
	PeriodYear  PeriodKind = "year"
	PeriodWeek  PeriodKind = "week"
)

// Period restricts a listing to one calendar date, month, year or ISO week.
// A Period missing its kind or its value matches everything.
type Period struct {
	Kind  PeriodKind
	Value string
}

// IsZero reports whether p applies no restriction.
func (p Period) IsZero() bool {
	return p.Kind == "" || strings.TrimSpace(p.Value) == ""
}

// Bounds returns the first and last day covered by p, both inclusive.
//
// Accepted values:
//
//	date   2024-01-31
//	month  2024-01
//	year   2024
//	week   2024-05  (ISO year and week number)
func (p Period) Bounds() (from, to time.Time, err error) {
	value := strings.TrimSpace(p.Value)
	if value == "" {
		return time.Time{}, time.Time{}, model.Invalid("filter_value", "is required")
	}

	switch p.Kind {
	case PeriodDate:
		day, err := time.Parse(model.DateLayout, value)
		if err != nil {
			return time.Time{}, time.Time{}, model.Invalid("filter_value", "invalid date format, use YYYY-MM-DD")
		}
		return day, day, nil

	case PeriodMonth:
		first, err := time.Parse("2006-01", value)
		if err != nil {
			return time.Time{}, time.Time{}, model.Invalid("filter_value", "invalid month format, use YYYY-MM")
		}
		return first, first.AddDate(0, 1, -1), nil

	case PeriodYear:
		year, err := strconv.Atoi(value)
		if err != nil || year < 1 || year > 9999 {
			return time.Time{}, time.Time{}, model.Invalid("filter_value", "invalid year format, use YYYY")
		}
		first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(1, 0, -1), nil

	case PeriodWeek:
		monday, ok := isoWeekStart(value)
		if !ok {
			return time.Time{}, time.Time{}, model.Invalid("filter_value", "invalid week format, use YYYY-WW")
		}
		return monday, monday.AddDate(0, 0, 6), nil

	default:
		return time.Time{}, time.Time{}, model.Invalid("filter_type", "must be date, month, week or year")
	}
}

// isoWeekStart returns the Monday of ISO week "YYYY-WW".
func isoWeekStart(value string) (time.Time, bool) {
	yearPart, weekPart, found := strings.Cut(value, "-")
	if !found {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil || year < 1 || year > 9999 {
		return time.Time{}, false
	}
	week, err := strconv.Atoi(weekPart)
	if err != nil || week < 1 || week > 53 {
		return time.Time{}, false
	}

	// January 4th is always in week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)

	if y, w := monday.ISOWeek(); y != year || w != week {
		return time.Time{}, false
	}
	return monday, true
}
