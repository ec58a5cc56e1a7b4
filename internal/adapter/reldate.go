package adapter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeDateRegex = regexp.MustCompile(`(\d+)\s*(day|hour|minute)`)

// parseRelativeDate resolves strings like "2 days ago", "today", or
// "just posted" against the given fetch time. Unparseable strings yield
// nil, never an error — the posting is ingested without a posted date.
func parseRelativeDate(s string, now time.Time) *time.Time {
	if s == "" {
		return nil
	}

	lower := strings.ToLower(s)

	if strings.Contains(lower, "today") || strings.Contains(lower, "just posted") {
		return &now
	}

	matches := relativeDateRegex.FindStringSubmatch(lower)
	if matches == nil {
		return nil
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil
	}

	var t time.Time
	switch matches[2] {
	case "day":
		t = now.AddDate(0, 0, -value)
	case "hour":
		t = now.Add(-time.Duration(value) * time.Hour)
	case "minute":
		t = now.Add(-time.Duration(value) * time.Minute)
	default:
		return nil
	}
	return &t
}
