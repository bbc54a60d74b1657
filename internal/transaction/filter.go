package transaction

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Filter selects the transactions of a calendar month, judged on the
// wall-clock sale date. With Year unset the month is matched in every year;
// with Year set only [Year-Month-01, next month) is matched.
type Filter struct {
	Month time.Month // 0 matches every month
	Year  int        // 0 matches every year
}

// ParseMonth parses a one or two digit month ("3", "03").
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}

	return time.Month(n), nil
}

// ParseYear parses an optional four digit year. The empty string yields 0.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 9999 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, s)
	}

	return n, nil
}

func (f Filter) validate() error {
	if f.Month < 0 || f.Month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, f.Month)
	}

	if f.Year < 0 || f.Year > 9999 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, f.Year)
	}

	return nil
}

// Range returns the half-open wall-clock interval covered by a month and
// year. ok is false when the filter does not pin a single month of a single
// year.
func (f Filter) Range() (start, end time.Time, ok bool) {
	if f.Month == 0 || f.Year == 0 {
		return time.Time{}, time.Time{}, false
	}

	start = time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, time.UTC)

	return start, start.AddDate(0, 1, 0), true
}

// Matches reports whether the wall-clock date of t falls inside the filter.
// The zone of t is ignored.
func (f Filter) Matches(t time.Time) bool {
	if f.Month != 0 && t.Month() != f.Month {
		return false
	}

	if f.Year != 0 && t.Year() != f.Year {
		return false
	}

	return true
}

// Key identifies the filter in cache keys.
func (f Filter) Key() string {
	return fmt.Sprintf("m%02d:y%04d", int(f.Month), f.Year)
}

// ListFilter narrows a paginated listing.
type ListFilter struct {
	Filter
	Search  string
	Page    int // 1-based
	PerPage int
}

func (f ListFilter) normalize() (ListFilter, error) {
	if err := f.Filter.validate(); err != nil {
		return f, err
	}

	if f.Page == 0 {
		f.Page = 1
	}

	if f.PerPage == 0 {
		f.PerPage = DefaultPerPage
	}

	if f.Page < 1 || f.PerPage < 1 || f.PerPage > MaxPerPage {
		return f, fmt.Errorf("%w: page=%d perPage=%d", ErrInvalidPage, f.Page, f.PerPage)
	}

	f.Search = strings.TrimSpace(f.Search)

	return f, nil
}

// Offset is the number of rows skipped before the current page.
func (f ListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}

	return (f.Page - 1) * f.PerPage
}
