package gametime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Warmup is the time between the scheduled start and the first faceoff.
	Warmup = 5 * time.Minute
	// DefaultPeriodLength is the league's running-clock period length.
	DefaultPeriodLength = 22 * time.Minute
)

// ParseClock parses a game-clock value, "mm:ss" or plain seconds. Seconds
// may carry a fraction ("42.5"), as the site prints in the final minute.
func ParseClock(s string) (time.Duration, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, fmt.Errorf("parse clock: empty")
	}
	minutes := 0
	secPart := v
	if m, sec, found := strings.Cut(v, ":"); found {
		n, err := strconv.Atoi(strings.TrimSpace(m))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parse clock %q: bad minutes", s)
		}
		minutes = n
		secPart = sec
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(secPart), 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("parse clock %q: bad seconds", s)
	}
	return time.Duration(minutes)*time.Minute + time.Duration(secs*float64(time.Second)), nil
}

// EstimateEventTime estimates when an event happened on the wall clock:
// start + warmup + (period-1)*periodLength + (periodLength - remaining).
// A non-positive periodLength falls back to DefaultPeriodLength.
func EstimateEventTime(start time.Time, period int, remaining string, periodLength time.Duration) (time.Time, error) {
	if period < 1 {
		return time.Time{}, fmt.Errorf("estimate event time: period %d", period)
	}
	if periodLength <= 0 {
		periodLength = DefaultPeriodLength
	}
	left, err := ParseClock(remaining)
	if err != nil {
		return time.Time{}, err
	}
	if left > periodLength {
		return time.Time{}, fmt.Errorf("estimate event time: %s remaining exceeds period length %s", left, periodLength)
	}
	elapsed := time.Duration(period-1)*periodLength + (periodLength - left)
	return start.Add(Warmup + elapsed), nil
}
