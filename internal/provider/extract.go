package provider

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtractInt normalizes a numeric cell value. The site renders counts as
// "10", "10.0" or an empty cell; empty and unparseable cells read as zero.
func ExtractInt(val string) int {
	v := strings.TrimSpace(val)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

// ExtractGoals coerces a schedule goal cell. Float renderings collapse to
// integers ("4.0" → "4"), annotated results ("4 S") are kept verbatim, and
// ok=false means the field should be dropped because the game has no score.
func ExtractGoals(val string) (string, bool) {
	v := strings.TrimSpace(val)
	if v == "" {
		return "", false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return strconv.Itoa(int(f)), true
	}
	return v, true
}

var gameIDMarkers = strings.NewReplacer("*", "", "^", "")

// StripGameID removes the site's footnote markers from a game identifier.
func StripGameID(id string) string {
	return strings.TrimSpace(gameIDMarkers.Replace(id))
}

// CollapseSpaces folds runs of whitespace into single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Ordinal renders a standings position: 1st, 2nd, 3rd, 4th, 11th, 21st…
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// ParsePeriod maps "1", "2", "3" to themselves and overtime labels ("OT",
// "OT1", "SO") to the periods after regulation.
func ParsePeriod(val string) (int, error) {
	v := strings.ToUpper(strings.TrimSpace(val))
	switch {
	case v == "SO":
		return 5, nil
	case strings.HasPrefix(v, "OT"):
		extra := 1
		if rest := strings.TrimPrefix(v, "OT"); rest != "" {
			n, err := strconv.Atoi(rest)
			if err != nil {
				return 0, fmt.Errorf("parse period %q: %w", val, err)
			}
			extra = n
		}
		return 3 + extra, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse period %q: %w", val, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("parse period %q: must be positive", val)
	}
	return n, nil
}
