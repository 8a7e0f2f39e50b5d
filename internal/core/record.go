package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Record is a single transaction as supplied by the persistence layer.
	// The analytics engine treats records as read-only: every aggregate is a
	// freshly constructed value and the input slice is never mutated.
	Record struct {
		ID          string
		Category    string
		Amount      float64
		Description string
		Date        time.Time // civil date, time-of-day is ignored
		CreatedAt   time.Time // ordering tie-breaker only, never aggregated
	}

	// MonthKey identifies one calendar month.
	MonthKey struct {
		Year  int
		Month int // 1-12
	}
)

var (
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrDescriptionLong = errors.New("description too long (max 200 characters)")
)

// Key returns the calendar month a record belongs to.
func (r Record) Key() MonthKey {
	return MonthKey{Year: r.Date.Year(), Month: int(r.Date.Month())}
}

// DayString returns the record's date portion as YYYY-MM-DD.
func (r Record) DayString() string {
	return r.Date.Format("2006-01-02")
}

func (r Record) Validate() error {
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if len(r.Description) > 200 {
		return ErrDescriptionLong
	}
	return nil
}

// Before reports whether k is chronologically earlier than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Next returns the following calendar month, wrapping December into January
// of the next year.
func (k MonthKey) Next() MonthKey {
	if k.Month == 12 {
		return MonthKey{Year: k.Year + 1, Month: 1}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Name returns the English month name, e.g. "January".
func (k MonthKey) Name() string {
	return time.Month(k.Month).String()
}

// EqualFold reports case-insensitive category equality. Category labels are
// an open, caller-supplied vocabulary: stored casing is preserved everywhere
// and folding happens only at lookup boundaries like this one.
func EqualFold(category, other string) bool {
	return strings.EqualFold(strings.TrimSpace(category), strings.TrimSpace(other))
}
