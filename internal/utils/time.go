package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/timeledger/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// DayOf returns the ledger day (YYYY-MM-DD) that t falls on in loc.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateFormat)
}

// ParseDay parses a YYYY-MM-DD string as midnight in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", day, err)
	}
	return t, nil
}

// WeekRange returns the Monday and Sunday of the week containing day.
func WeekRange(day string) (from, to string, err error) {
	t, err := ParseDay(day, time.UTC)
	if err != nil {
		return "", "", err
	}
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	monday := t.AddDate(0, 0, -offset)
	return monday.Format(constants.DateFormat), monday.AddDate(0, 0, 6).Format(constants.DateFormat), nil
}

// MonthRange returns the first and last day of the month containing day.
func MonthRange(day string) (from, to string, err error) {
	t, err := ParseDay(day, time.UTC)
	if err != nil {
		return "", "", err
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(constants.DateFormat), last.Format(constants.DateFormat), nil
}

// FormatDuration renders d as HH:MM:SS. Hours are not capped at 24.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, secs/3600, (secs/60)%60, secs%60)
}

// FormatClock renders the wall-clock time of t in loc.
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.TimeFormat)
}
