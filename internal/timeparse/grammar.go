package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	ordinalRe  = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)
	ampmRe     = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\b\.?`)
	clock24Re  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)
	namedRe    = regexp.MustCompile(`\b(noon|midday|midnight)\b`)
	inOffsetRe = regexp.MustCompile(`^(?:in|after)\s+(.+?)\s*(minutes?|mins?|hours?|hrs?|days?|weeks?)$`)
	agoRe      = regexp.MustCompile(`^(.+?)\s*(minutes?|mins?|hours?|hrs?|days?|weeks?)\s+(?:from now|later)$`)
	spanRe     = regexp.MustCompile(`^(.+?)\s*(minutes?|mins?|hours?|hrs?|days?|weeks?)$`)
)

// isoLayouts are tried against the raw, upper-cased input.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// dateLayouts match the date part after the clock has been removed.
// Slash dates are day first.
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
}

var yearlessLayouts = []string{
	"2 January",
	"2 Jan",
	"January 2",
	"Jan 2",
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var partsOfDay = map[string]int{
	"morning":   9,
	"afternoon": 14,
	"evening":   18,
	"night":     20,
}

var fillerWords = map[string]bool{
	"at":     true,
	"on":     true,
	"the":    true,
	"of":     true,
	"around": true,
	"about":  true,
	"sharp":  true,
	"please": true,
	"@":      true,
}

var numberWords = map[string]float64{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "ninety": 90,
}

func normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Trim(s, "\"'`")
	s = strings.TrimRight(s, "!?")
	s = strings.ReplaceAll(s, ",", " ")
	s = ordinalRe.ReplaceAllString(s, "$1")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// parseQuantity understands digits, decimals and small English numbers.
func parseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0, false
	case "half", "half a", "half an":
		return 0.5, true
	case "a couple of", "couple of", "a couple", "couple":
		return 2, true
	case "an hour and a half", "one and a half", "an and a half":
		return 1.5, true
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && n >= 0 {
		return n, true
	}
	if n, ok := numberWords[s]; ok {
		return n, true
	}

	// twenty five, twenty-five
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' })
	if len(parts) == 2 {
		tens, ok1 := numberWords[parts[0]]
		ones, ok2 := numberWords[parts[1]]
		if ok1 && ok2 && tens >= 20 && ones < 10 {
			return tens + ones, true
		}
	}
	return 0, false
}

func unitDuration(unit string) time.Duration {
	switch {
	case strings.HasPrefix(unit, "min"):
		return time.Minute
	case strings.HasPrefix(unit, "h"):
		return time.Hour
	case strings.HasPrefix(unit, "d"):
		return 24 * time.Hour
	case strings.HasPrefix(unit, "w"):
		return 7 * 24 * time.Hour
	}
	return 0
}

func isCalendarUnit(unit string) bool {
	return strings.HasPrefix(unit, "d") || strings.HasPrefix(unit, "w")
}

// ParseDuration reads a length such as "for one hour", "45 minutes", "+90m" or "1h30m".
func ParseDuration(text string) (time.Duration, bool) {
	s := normalize(text)
	for _, prefix := range []string{"for ", "lasting ", "+"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimSuffix(s, " long")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if d, err := time.ParseDuration(strings.ReplaceAll(s, " ", "")); err == nil {
		return d, d > 0
	}

	if s == "an hour and a half" || s == "one and a half hours" {
		return 90 * time.Minute, true
	}

	m := spanRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	q, ok := parseQuantity(m[1])
	if !ok || q <= 0 {
		return 0, false
	}
	return time.Duration(q * float64(unitDuration(m[2]))), true
}
