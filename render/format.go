package render

import (
	"fmt"
	"math"
	"time"
)

// currencySymbols maps ISO currency codes to display symbols. Unmapped codes
// fall back to rendering with the code itself.
var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

// FormatAmount renders an integer minor-unit amount as a fixed two-decimal
// major-unit string with the currency symbol or code.
func FormatAmount(cents int64, currency string) string {
	major := float64(cents) / 100
	if symbol, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%.2f", symbol, major)
	}
	return fmt.Sprintf("%s %.2f", currency, major)
}

// FormatRelative formats a timestamp relative to now, classifying by whole
// calendar-day difference rather than elapsed hours:
//
//	0      -> "today at HH:MM"
//	1      -> "tomorrow at HH:MM"
//	2..6   -> "{weekday} at HH:MM"
//	else   -> "on YYYY-MM-DD at HH:MM"
//
// The weekday is the target's, not now's. A timestamp that does not parse is
// returned verbatim.
func FormatRelative(timestamp string, now time.Time) string {
	target, err := parseTimestamp(timestamp)
	if err != nil {
		return timestamp
	}

	timeStr := target.Format("15:04")
	switch delta := wholeDaysBetween(now, target); {
	case delta == 0:
		return "today at " + timeStr
	case delta == 1:
		return "tomorrow at " + timeStr
	case delta >= 2 && delta <= 6:
		return target.Weekday().String() + " at " + timeStr
	default:
		return fmt.Sprintf("on %s at %s", target.Format("2006-01-02"), timeStr)
	}
}

// ComputeDailyPercent computes spent/limit as an integer percentage, rounded
// to nearest. A non-positive limit yields 0 rather than dividing by zero.
func ComputeDailyPercent(spentCents, limitCents int64) int {
	if limitCents <= 0 {
		return 0
	}
	return int(math.Round(float64(spentCents) / float64(limitCents) * 100))
}

// FormatUptime renders a duration in the coarsest whole unit below the next
// threshold: seconds under a minute, floored minutes under an hour, floored
// hours under a day, floored days beyond that. Exactly 3600s is "1 hours" and
// exactly 86400s is "1 days".
func FormatUptime(seconds float64) string {
	s := int64(seconds)
	switch {
	case s < 60:
		return fmt.Sprintf("%d seconds", s)
	case s < 3600:
		return fmt.Sprintf("%d minutes", s/60)
	case s < 86400:
		return fmt.Sprintf("%d hours", s/3600)
	default:
		return fmt.Sprintf("%d days", s/86400)
	}
}

// parseTimestamp accepts RFC 3339 timestamps, with or without a zone offset.
func parseTimestamp(timestamp string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", timestamp)
}

// wholeDaysBetween counts calendar days from now's date to target's date,
// each taken in its own location.
func wholeDaysBetween(now, target time.Time) int {
	ny, nm, nd := now.Date()
	ty, tm, td := target.Date()
	a := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
