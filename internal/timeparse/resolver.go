// Package timeparse turns free-text time phrases into absolute instants
// anchored to a configured location.
package timeparse

import (
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	planpalErrors "github.com/harunnryd/planpal/internal/errors"
)

type Resolver struct {
	loc      *time.Location
	fallback *when.Parser
}

type Option func(*Resolver)

// WithoutFallback disables the rule-engine fallback so only the built-in
// grammar is consulted.
func WithoutFallback() Option {
	return func(r *Resolver) {
		r.fallback = nil
	}
}

func New(loc *time.Location, opts ...Option) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r := &Resolver{loc: loc, fallback: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

type dateKind int

const (
	dateNone dateKind = iota
	dateFixed
	dateWeekday
)

type clock struct {
	hour, minute, second int
	set                  bool
}

// Resolve returns the instant described by text relative to now. Bare clock
// times and weekdays that already passed roll forward. ok is false when the
// phrase is not understood.
func (r *Resolver) Resolve(text string, now time.Time) (time.Time, bool) {
	now = now.In(r.loc)

	raw := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "\"'`"))
	if raw == "" {
		return time.Time{}, false
	}
	upper := strings.ToUpper(raw)
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, upper, r.loc); err == nil {
			return t.In(r.loc), true
		}
	}

	s := normalize(raw)
	switch s {
	case "now", "right now", "immediately", "asap":
		return now, true
	}

	if t, ok := r.resolveOffset(s, now); ok {
		return t, true
	}
	if t, ok := r.resolveCalendar(s, now); ok {
		return t, true
	}

	if _, _, valid := extractClock(s); !valid || r.fallback == nil {
		return time.Time{}, false
	}
	res, err := r.fallback.Parse(s, now)
	if err != nil || res == nil {
		return time.Time{}, false
	}
	return r.fromFallback(s, res, now)
}

// fromFallback accepts a rule-engine match only when it covers all of s apart
// from filler words. A match that names no day rolls forward like a bare clock.
func (r *Resolver) fromFallback(s string, res *when.Result, now time.Time) (time.Time, bool) {
	if res.Index < 0 || res.Index+len(res.Text) > len(s) {
		return time.Time{}, false
	}
	if stripFiller(cut(s, res.Index, res.Index+len(res.Text))) != "" {
		return time.Time{}, false
	}

	t := res.Time.In(r.loc)
	if t.Before(now) && !namesDay(res.Text) {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

// namesDay reports whether text says anything beyond a time of day.
func namesDay(text string) bool {
	_, rest, _ := extractClock(normalize(text))
	for _, tok := range strings.Fields(rest) {
		switch {
		case fillerWords[tok], partsOfDay[tok] > 0:
		case tok == "in", tok == "o'clock", tok == "oclock":
		case isDigits(tok):
		default:
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ResolveRange resolves a start and an end phrase. The end may be a length
// relative to the start ("for one hour") and a bare clock end inherits the
// start date.
func (r *Resolver) ResolveRange(startText, endText string, now time.Time) (time.Time, time.Time, error) {
	start, ok := r.Resolve(startText, now)
	if !ok {
		return time.Time{}, time.Time{}, planpalErrors.InvalidInput("couldn't parse start time " + strconv.Quote(strings.TrimSpace(startText)))
	}

	if d, ok := ParseDuration(endText); ok {
		return start, start.Add(d), nil
	}

	if c, rest, ok := extractClock(normalize(endText)); ok && c.set && stripFiller(rest) == "" {
		end := time.Date(start.Year(), start.Month(), start.Day(), c.hour, c.minute, c.second, 0, r.loc)
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
		return start, end, nil
	}

	end, ok := r.Resolve(endText, now)
	if !ok {
		return time.Time{}, time.Time{}, planpalErrors.InvalidInput("couldn't parse end time " + strconv.Quote(strings.TrimSpace(endText)))
	}
	return start, end, nil
}

func (r *Resolver) resolveOffset(s string, now time.Time) (time.Time, bool) {
	m := inOffsetRe.FindStringSubmatch(s)
	if m == nil {
		m = agoRe.FindStringSubmatch(s)
	}
	if m == nil {
		return time.Time{}, false
	}
	q, ok := parseQuantity(m[1])
	if !ok {
		return time.Time{}, false
	}
	if isCalendarUnit(m[2]) && q == float64(int(q)) {
		days := int(q)
		if strings.HasPrefix(m[2], "w") {
			days *= 7
		}
		return now.AddDate(0, 0, days), true
	}
	return now.Add(time.Duration(q * float64(unitDuration(m[2])))), true
}

func (r *Resolver) resolveCalendar(s string, now time.Time) (time.Time, bool) {
	c, rest, ok := extractClock(s)
	if !ok {
		return time.Time{}, false
	}

	var words []string
	partOfDay := -1
	tokens := strings.Fields(rest)
	for i, tok := range tokens {
		switch {
		case fillerWords[tok]:
		case tok == "in" && i+2 < len(tokens) && tokens[i+1] == "the" && partsOfDay[tokens[i+2]] > 0:
		case tok == "tonight":
			words = append(words, "today")
			partOfDay = partsOfDay["night"]
		case partsOfDay[tok] > 0:
			partOfDay = partsOfDay[tok]
		default:
			words = append(words, tok)
		}
	}

	// "5 in the evening"
	if !c.set && partOfDay >= 0 {
		for i, tok := range words {
			n, err := strconv.Atoi(tok)
			if err != nil || n < 1 || n > 12 {
				continue
			}
			trimmed := append(append([]string{}, words[:i]...), words[i+1:]...)
			if _, _, _, ok := r.resolveDate(strings.Join(trimmed, " "), now); ok {
				c = clock{hour: hourOfPart(n, partOfDay), set: true}
				words = trimmed
				break
			}
		}
	}
	datePart := strings.Join(words, " ")

	day, kind, relative, ok := r.resolveDate(datePart, now)
	if !ok {
		return time.Time{}, false
	}
	if kind == dateNone && !c.set && partOfDay < 0 {
		return time.Time{}, false
	}

	switch {
	case c.set:
	case partOfDay >= 0:
		c = clock{hour: partOfDay, set: true}
	case relative:
		c = clock{hour: now.Hour(), minute: now.Minute(), second: now.Second(), set: true}
	}

	t := time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, c.second, 0, r.loc)
	if t.Before(now) {
		switch kind {
		case dateNone:
			t = t.AddDate(0, 0, 1)
		case dateWeekday:
			t = t.AddDate(0, 0, 7)
		}
	}
	return t, true
}

// resolveDate returns midnight of the described day. relative reports whether
// the day was named relative to now, in which case a missing clock keeps the
// current time of day.
func (r *Resolver) resolveDate(part string, now time.Time) (day time.Time, kind dateKind, relative bool, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)

	switch part {
	case "":
		return today, dateNone, false, true
	case "today":
		return today, dateFixed, true, true
	case "tomorrow", "tmrw", "tmr", "tommorow":
		return today.AddDate(0, 0, 1), dateFixed, true, true
	case "day after tomorrow":
		return today.AddDate(0, 0, 2), dateFixed, true, true
	case "yesterday":
		return today.AddDate(0, 0, -1), dateFixed, true, true
	}

	fields := strings.Fields(part)
	if len(fields) <= 2 {
		modifier, name := "", fields[len(fields)-1]
		if len(fields) == 2 {
			modifier = fields[0]
		}
		if wd, found := weekdays[name]; found {
			delta := (int(wd) - int(now.Weekday()) + 7) % 7
			switch modifier {
			case "next":
				if delta == 0 {
					delta = 7
				}
				return today.AddDate(0, 0, delta), dateFixed, true, true
			case "", "this", "coming":
				return today.AddDate(0, 0, delta), dateWeekday, true, true
			}
			return time.Time{}, 0, false, false
		}
	}

	if m := inOffsetRe.FindStringSubmatch(part); m != nil && isCalendarUnit(m[2]) {
		if q, found := parseQuantity(m[1]); found && q == float64(int(q)) {
			days := int(q)
			if strings.HasPrefix(m[2], "w") {
				days *= 7
			}
			return today.AddDate(0, 0, days), dateFixed, true, true
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, part, r.loc); err == nil {
			return t, dateFixed, false, true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.ParseInLocation(layout, part, r.loc); err == nil {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc)
			if t.Before(today) {
				t = t.AddDate(1, 0, 0)
			}
			return t, dateFixed, false, true
		}
	}
	return time.Time{}, 0, false, false
}

// extractClock pulls the first time-of-day out of s and returns the remaining
// text. ok is false when a clock is present but out of range.
func extractClock(s string) (clock, string, bool) {
	if loc := ampmRe.FindStringSubmatchIndex(s); loc != nil {
		hour, _ := strconv.Atoi(s[loc[2]:loc[3]])
		minute := 0
		if loc[4] >= 0 {
			minute, _ = strconv.Atoi(s[loc[4]:loc[5]])
		}
		pm := s[loc[6]:loc[7]] == "p"
		if hour == 0 || hour > 12 || minute > 59 {
			return clock{}, "", false
		}
		if hour == 12 {
			hour = 0
		}
		if pm {
			hour += 12
		}
		return clock{hour: hour, minute: minute, set: true}, cut(s, loc[0], loc[1]), true
	}

	if loc := clock24Re.FindStringSubmatchIndex(s); loc != nil {
		hour, _ := strconv.Atoi(s[loc[2]:loc[3]])
		minute, _ := strconv.Atoi(s[loc[4]:loc[5]])
		second := 0
		if loc[6] >= 0 {
			second, _ = strconv.Atoi(s[loc[6]:loc[7]])
		}
		if hour > 23 || minute > 59 || second > 59 {
			return clock{}, "", false
		}
		return clock{hour: hour, minute: minute, second: second, set: true}, cut(s, loc[0], loc[1]), true
	}

	if loc := namedRe.FindStringSubmatchIndex(s); loc != nil {
		hour := 12
		if s[loc[2]:loc[3]] == "midnight" {
			hour = 0
		}
		return clock{hour: hour, set: true}, cut(s, loc[0], loc[1]), true
	}

	return clock{}, s, true
}

// hourOfPart maps a 12-hour reading onto the half of the day part names.
func hourOfPart(n, part int) int {
	if n == 12 {
		n = 0
	}
	if part >= 12 {
		return n + 12
	}
	return n
}

func stripFiller(s string) string {
	var kept []string
	for _, tok := range strings.Fields(s) {
		if !fillerWords[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

func cut(s string, from, to int) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s[:from]+" "+s[to:], " "))
}
