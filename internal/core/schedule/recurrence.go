package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Rule kinds as they appear on the wire.
const (
	KindDaily    = "daily"
	KindWeekdays = "weekdays"
	KindWeekends = "weekends"
	KindCustom   = "custom"
)

// ErrInvalidRule is returned for unknown kinds, unparseable times, bad
// timezones, or bad custom day names.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// expansionWindow bounds Expand against unsatisfiable rules.
const expansionWindow = 365 * 24 * time.Hour

var dayTokens = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Validate checks the rule's kind, time of day, timezone, and custom day
// names. Rules are validated once at creation; Expand assumes a valid rule.
func (r *RecurrenceRule) Validate() error {
	switch r.Kind {
	case KindDaily, KindWeekdays, KindWeekends:
	case KindCustom:
		for _, d := range splitDays(r.Days) {
			if _, ok := dayTokens[d]; !ok {
				return fmt.Errorf("%w: unknown day %q", ErrInvalidRule, d)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
	}
	if _, _, err := parseTimeOfDay(r.TimeOfDay); err != nil {
		return err
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidRule, r.Timezone)
	}
	return nil
}

// Matches reports whether the rule fires on the given weekday.
func (r *RecurrenceRule) Matches(day time.Weekday) bool {
	switch r.Kind {
	case KindDaily:
		return true
	case KindWeekdays:
		return day >= time.Monday && day <= time.Friday
	case KindWeekends:
		return day == time.Saturday || day == time.Sunday
	case KindCustom:
		for _, d := range splitDays(r.Days) {
			if dayTokens[d] == day {
				return true
			}
		}
	}
	return false
}

// Expand returns up to count future timestamps satisfying the rule, in
// increasing order, all strictly after from. The cursor starts at the rule's
// time of day on from's date in the rule's timezone; if that instant is not
// strictly after from it advances one day, so a time that already passed
// today starts tomorrow. Expansion stops early at from+365d — callers must
// treat a short result as ErrInsufficientWindow, never silently schedule
// fewer posts.
func (r *RecurrenceRule) Expand(count int, from time.Time) ([]time.Time, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidRule, r.Timezone)
	}
	hour, minute, err := parseTimeOfDay(r.TimeOfDay)
	if err != nil {
		return nil, err
	}

	local := from.In(loc)
	cursor := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !cursor.After(from) {
		cursor = cursor.AddDate(0, 0, 1)
	}

	bound := from.Add(expansionWindow)
	out := make([]time.Time, 0, count)
	for len(out) < count && !cursor.After(bound) {
		if r.Matches(cursor.Weekday()) {
			out = append(out, cursor)
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return out, nil
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	t, perr := time.Parse("15:04", s)
	if perr != nil {
		return 0, 0, fmt.Errorf("%w: bad time of day %q", ErrInvalidRule, s)
	}
	return t.Hour(), t.Minute(), nil
}

func splitDays(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(csv, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
