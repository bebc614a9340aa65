package foresight

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02"

// Date represents a date with day-level granularity.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String format the date in ISO-8601.
func (d Date) String() string { return d.time().Format(DateFormat) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Format returns a textual representation of the date value formatted according
// to the layout defined by the argument. See the documentation for [time.Format].
func (d Date) Format(format string) string { return d.time().Format(format) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 when d is before, equal to, or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// AddDays returns a new Date with the given number of days added.
func (d Date) AddDays(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// AddMonths returns the date i months later, clamping the day to the end of
// the target month (Jan 31 + 1 month = Feb 28 or 29).
func (d Date) AddMonths(i int) Date {
	first := NewDate(d.y, d.m+time.Month(i), 1)
	day := min(d.d, daysInMonth(first.y, first.m))
	return Date{first.y, first.m, day}
}

// AddYears returns the date i years later, clamping Feb 29 to Feb 28 on
// non-leap years.
func (d Date) AddYears(i int) Date {
	day := min(d.d, daysInMonth(d.y+i, d.m))
	return Date{d.y + i, d.m, day}
}

// EndOfYear returns December 31 of the date's year.
func (d Date) EndOfYear() Date { return Date{d.y, time.December, 31} }

// isLeapYear reports whether the year has a February 29.
func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// daysInMonth returns the number of days of a month without building a time.Time.
func daysInMonth(year int, month time.Month) int {
	days := [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if month == time.February && isLeapYear(year) {
		return 29
	}
	return days[month-1]
}

// rataDie converts the date to a day number (days since 0001-01-01 in the
// proleptic Gregorian calendar). O(1), no time.Time allocation, which matters
// in the scheduler's hot loop.
func (d Date) rataDie() int {
	y, m, day := d.y, int(d.m), d.d
	// Shift so that March is month 1 and February closes the "year".
	a := (14 - m) / 12
	y2 := y - a
	m2 := m + 12*a - 3
	return day + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 306
}

// DaysBetween computes the number of civil days from a to b (b - a).
// Positive when b is after a.
func DaysBetween(a, b Date) int { return b.rataDie() - a.rataDie() }

// Age returns the age in years and whole months of someone born on birth, as
// of on. The current month only counts once its day of month is reached, so
// the day before a birthday reads (years-1, 11), the birthday itself
// (years, 0).
func Age(birth, on Date) (years, months int) {
	years = on.y - birth.y
	months = int(on.m) - int(birth.m)
	if on.d < birth.d {
		months--
	}
	if months < 0 {
		months += 12
		years--
	}
	return years, months
}

// ParseDate parses a Date from an ISO-8601 string. It is lenient and accepts
// single digit fields like "2025-7-1".
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return NewDate(on.Date()), nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return fmt.Errorf("invalid date %q, want format %q: %w", str, DateFormat, err)
	}
	*d = NewDate(on.Date())
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	str := d.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
