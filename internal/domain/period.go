package domain

import (
	"fmt"
	"time"
)

const yearMonthLayout = "2006-01"

// DateLayout is the civil date format used on the wire.
const DateLayout = "2006-01-02"

// Date returns the civil date y-m-d as UTC midnight. Month and day overflow
// normalise the same way time.Date does, so Date(2024, 13, 1) is 2025-01-01.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateDay keeps the calendar date of t (in t's own location) and drops the clock.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDate parses a yyyy-mm-dd civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ErrValidation{Field: "date", Message: fmt.Sprintf("expected yyyy-mm-dd, got %q", s)}
	}
	return t, nil
}

// YearMonth is a calendar month used to scope fetches and dashboards.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the month containing t.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "yyyy-mm".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(yearMonthLayout, s)
	if err != nil {
		return YearMonth{}, &ErrValidation{Field: "month", Message: fmt.Sprintf("expected yyyy-mm, got %q", s)}
	}
	return YearMonthOf(t), nil
}

func (p YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the first day of the month.
func (p YearMonth) Start() time.Time {
	return Date(p.Year, p.Month, 1)
}

// End is the last day of the month.
func (p YearMonth) End() time.Time {
	return Date(p.Year, p.Month+1, 0)
}

// Contains reports whether t's calendar date falls in the month.
func (p YearMonth) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

func (p YearMonth) Next() YearMonth {
	return YearMonthOf(Date(p.Year, p.Month+1, 1))
}

func (p YearMonth) Prev() YearMonth {
	return YearMonthOf(Date(p.Year, p.Month-1, 1))
}

func (p YearMonth) Before(o YearMonth) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p YearMonth) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p YearMonth) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *YearMonth) UnmarshalText(b []byte) error {
	v, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// StatementWindow is the closed interval of days belonging to a credit-card bill.
type StatementWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains compares at day precision; both ends are inclusive.
func (w StatementWindow) Contains(t time.Time) bool {
	d := TruncateDay(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w StatementWindow) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}
