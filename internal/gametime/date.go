// Package gametime turns the site's year-less schedule dates into real
// timestamps and estimates wall-clock times of in-game events.
package gametime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockDate is a schedule date and time of day with no year attached.
type ClockDate struct {
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

func (c ClockDate) String() string {
	return fmt.Sprintf("%s %d %02d:%02d", c.Month.String()[:3], c.Day, c.Hour, c.Minute)
}

// In places the date in a year. ok=false when the day does not exist in
// that year (Feb 29 outside a leap year).
func (c ClockDate) In(year int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, c.Month, c.Day, c.Hour, c.Minute, 0, 0, loc)
	if t.Month() != c.Month || t.Day() != c.Day {
		return time.Time{}, false
	}
	return t, true
}

// ParseClockDate parses a schedule date like "Thu Jan 4" and a time of day
// like "7:30 PM", "12:05 AM" or "12 Noon". The weekday is ignored.
func ParseClockDate(date, timeOfDay string) (ClockDate, error) {
	fields := strings.Fields(date)
	if len(fields) < 2 {
		return ClockDate{}, fmt.Errorf("parse date %q: want \"Mon Jan 2\"", date)
	}
	// Weekday is optional.
	monthField, dayField := fields[len(fields)-2], fields[len(fields)-1]
	m, err := time.Parse("Jan", monthField)
	if err != nil {
		return ClockDate{}, fmt.Errorf("parse date %q: month: %w", date, err)
	}
	day, err := strconv.Atoi(dayField)
	if err != nil || day < 1 || day > 31 {
		return ClockDate{}, fmt.Errorf("parse date %q: bad day", date)
	}

	hour, minute, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return ClockDate{}, err
	}
	return ClockDate{Month: m.Month(), Day: day, Hour: hour, Minute: minute}, nil
}

func parseTimeOfDay(s string) (int, int, error) {
	v := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if v == "12 NOON" || v == "NOON" {
		return 12, 0, nil
	}

	var suffix string
	switch {
	case strings.HasSuffix(v, "AM"):
		suffix = "AM"
	case strings.HasSuffix(v, "PM"):
		suffix = "PM"
	default:
		return 0, 0, fmt.Errorf("parse time %q: missing AM/PM", s)
	}
	clock := strings.TrimSpace(strings.TrimSuffix(v, suffix))

	hourPart, minutePart, found := strings.Cut(clock, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("parse time %q: bad hour", s)
	}
	minute := 0
	if found {
		minute, err = strconv.Atoi(minutePart)
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, fmt.Errorf("parse time %q: bad minute", s)
		}
	}

	hour %= 12
	if suffix == "PM" {
		hour += 12
	}
	return hour, minute, nil
}

// ParseScoresheetDate parses the "Date: mm-dd-yy" value printed on a
// scoresheet, e.g. "01-04-24".
func ParseScoresheetDate(s string, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "Date:"))
	t, err := time.ParseInLocation("01-02-06", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse scoresheet date %q: %w", s, err)
	}
	return t, nil
}

// Resolver infers the missing year of schedule dates from an anchor: the
// first game of the schedule, whose full date is known. Resolved dates never
// precede the anchor, so a season crossing New Year lands in the next year.
type Resolver struct {
	anchor time.Time
	loc    *time.Location
}

// NewResolver anchors date resolution. The anchor's location is used for
// every resolved timestamp.
func NewResolver(anchor time.Time) *Resolver {
	return &Resolver{anchor: anchor, loc: anchor.Location()}
}

// Anchor returns the anchor time.
func (r *Resolver) Anchor() time.Time { return r.anchor }

// Resolve assigns a year to a clock date.
func (r *Resolver) Resolve(c ClockDate) (time.Time, error) {
	// Compare against the anchor's calendar day so that a game earlier on
	// the anchor day stays in the anchor year.
	floor := time.Date(r.anchor.Year(), r.anchor.Month(), r.anchor.Day(), 0, 0, 0, 0, r.loc)
	year := r.anchor.Year()

	t, ok := c.In(year, r.loc)
	if ok && !t.Before(floor) {
		return t, nil
	}
	if t, ok = c.In(year+1, r.loc); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("resolve %s after %s: no such day", c, r.anchor.Format("2006-01-02"))
}

// ResolveStrings parses and resolves in one step.
func (r *Resolver) ResolveStrings(date, timeOfDay string) (time.Time, error) {
	c, err := ParseClockDate(date, timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return r.Resolve(c)
}
