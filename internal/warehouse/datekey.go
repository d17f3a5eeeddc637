package warehouse

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the text forms accepted for source calendar dates.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
}

const secondsPerDay = 24 * 60 * 60

// ParseDate parses a source date value. Only the calendar date is kept:
// the result is midnight UTC of the day written in s.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, NewValidationError(s, fmt.Errorf("empty date"))
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, NewValidationError(s, fmt.Errorf("not a calendar date"))
}

// DateKey returns the date dimension key of t: year*10000 + month*100 + day.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Quarter returns the calendar quarter (1-4) of month.
func Quarter(month int) int {
	return (month + 2) / 3
}

// WeekOfMonth returns the 7-day bucket (1-5) that day falls in. It is not
// an ISO week.
func WeekOfMonth(day int) int {
	return (day + 6) / 7
}

// NewDimDate derives the date dimension row for t.
func NewDimDate(t time.Time) DimDate {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return DimDate{
		DateID:      DateKey(d),
		FullDate:    d,
		Day:         d.Day(),
		Month:       int(d.Month()),
		Year:        d.Year(),
		Quarter:     Quarter(int(d.Month())),
		WeekOfMonth: WeekOfMonth(d.Day()),
	}
}

// ProcessingDays returns the whole days between an order date and its
// completion date, or nil when either is missing or unparseable.
func ProcessingDays(orderDate string, completionDate *string) *int {
	if orderDate == "" || completionDate == nil {
		return nil
	}
	start, err := ParseDate(orderDate)
	if err != nil {
		return nil
	}
	end, err := ParseDate(*completionDate)
	if err != nil {
		return nil
	}
	days := int((end.Unix() - start.Unix()) / secondsPerDay)
	return &days
}
