package taskview

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// NotAvailable is shown for absent dates and values.
	NotAvailable = "N/A"
	// InvalidDate is shown when a timestamp cannot be parsed.
	InvalidDate = "Invalid date"
	// InvalidDuration is shown when either duration endpoint cannot be parsed.
	InvalidDuration = "Invalid duration"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the API emits.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// FormatRelativeDate renders value relative to now, e.g. "3 hours ago".
// It never fails: absent input yields NotAvailable and unparseable
// input yields InvalidDate.
func FormatRelativeDate(value *string, now time.Time) string {
	if value == nil || *value == "" {
		return NotAvailable
	}
	t, err := ParseTimestamp(*value)
	if err != nil {
		return InvalidDate
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatDuration renders the elapsed time between two timestamps as
// "45 seconds", "5 min 30 sec" or "2 hr 15 min". Seconds are floored.
// A negative span is rendered as-is rather than clamped.
func FormatDuration(start, end *string) string {
	if start == nil || end == nil || *start == "" || *end == "" {
		return NotAvailable
	}

	from, err := ParseTimestamp(*start)
	if err != nil {
		return InvalidDuration
	}
	to, err := ParseTimestamp(*end)
	if err != nil {
		return InvalidDuration
	}

	seconds := int64(math.Floor(to.Sub(from).Seconds()))
	if seconds < 60 {
		return fmt.Sprintf("%d seconds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d min %d sec", minutes, seconds%60)
	}

	hours := minutes / 60
	return fmt.Sprintf("%d hr %d min", hours, minutes%60)
}
