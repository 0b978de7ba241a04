// Package format renders backend values for display: dates, ISO-8601
// durations, prices, stop counts, and time-of-day labels.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var durationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)

// Date renders an ISO date as "15 Dec 2025".
// Unparseable input is returned unchanged.
func Date(iso string) string {
	t, err := parseISO(iso)
	if err != nil {
		return iso
	}
	return t.Format("2 Jan 2006")
}

// Time renders an ISO datetime as "10:30".
func Time(iso string) string {
	t, err := parseISO(iso)
	if err != nil {
		return iso
	}
	return t.Format("15:04")
}

// DateTime renders an ISO datetime as "15 Dec 2025, 10:30".
func DateTime(iso string) string {
	t, err := parseISO(iso)
	if err != nil {
		return iso
	}
	return t.Format("2 Jan 2006, 15:04")
}

func parseISO(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Duration renders an ISO-8601 duration like "PT2H30M" as "2h 30m".
// Input that is not an ISO duration is returned unchanged.
func Duration(iso string) string {
	m := durationRe.FindStringSubmatch(iso)
	if m == nil || !strings.HasPrefix(iso, "PT") {
		return iso
	}

	var parts []string
	if m[1] != "" {
		parts = append(parts, m[1]+"h")
	}
	if m[2] != "" {
		parts = append(parts, m[2]+"m")
	}
	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, " ")
}

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

// Price renders a decimal amount with its currency symbol, e.g. "€ 185.00".
// Unknown currencies fall back to the code itself.
func Price(amount, currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency
	}
	return symbol + " " + amount
}

// Stops renders a stop count: "Direct", "1 stop", "2 stops".
func Stops(n int) string {
	switch {
	case n == 0:
		return "Direct"
	case n == 1:
		return "1 stop"
	default:
		return fmt.Sprintf("%d stops", n)
	}
}

// TripDays returns the inclusive day count between two ISO dates, or 0 when
// either date is unparseable or the range is inverted.
func TripDays(startDate, endDate string) int {
	start, err := parseISO(startDate)
	if err != nil {
		return 0
	}
	end, err := parseISO(endDate)
	if err != nil {
		return 0
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 0
	}
	return days
}
