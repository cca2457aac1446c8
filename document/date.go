package document

import (
	"fmt"
	"time"
)

// Date is a calendar date without a time component, the promoted form of a
// strict YYYY-MM-DD string.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string into a Date. The lexical shape must
// already match; the parse rejects impossible calendar dates such as
// 2024-02-30.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}

	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String renders the date back to its YYYY-MM-DD lexical form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
