// Package schedule implements the event scheduling core: the recurrence
// rule codec, occurrence expansion, room conflict detection and the
// time-grid layout algorithm. Everything in this package is a pure
// function over its inputs.
package schedule

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Frequency is the repeat frequency of a recurrence rule.
type Frequency string

const (
	FreqNone    Frequency = "none"
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
	FreqYearly  Frequency = "yearly"
)

// EndType selects how a recurrence series terminates.
type EndType string

const (
	EndNever EndType = "never"
	EndOn    EndType = "on"
	EndAfter EndType = "after"
)

// RecurrenceConfig is the structured form of a recurrence rule. Exactly
// one of EndDate/Occurrences is meaningful, selected by EndType.
type RecurrenceConfig struct {
	Frequency   Frequency `json:"frequency"`
	Interval    int       `json:"interval"`
	DaysOfWeek  []int     `json:"days_of_week,omitempty"`  // 0=Sunday .. 6=Saturday, weekly only
	DayOfMonth  int       `json:"day_of_month,omitempty"`  // monthly/yearly
	MonthOfYear int       `json:"month_of_year,omitempty"` // yearly only
	EndType     EndType   `json:"end_type"`
	EndDate     time.Time `json:"end_date,omitempty"`
	Occurrences int       `json:"occurrences,omitempty"`
}

// untilLayout is the compact UTC timestamp format used by UNTIL tokens.
const untilLayout = "20060102T150405Z"

// dayCodes maps weekday numbers (0=Sunday) to their two-letter codes.
var dayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

var freqNames = map[Frequency]string{
	FreqDaily:   "DAILY",
	FreqWeekly:  "WEEKLY",
	FreqMonthly: "MONTHLY",
	FreqYearly:  "YEARLY",
}

// EncodeRule converts a recurrence config into its canonical rule string.
// A config with frequency "none" (or empty) encodes to "".
func EncodeRule(cfg RecurrenceConfig) string {
	name, ok := freqNames[cfg.Frequency]
	if !ok {
		return ""
	}

	tokens := []string{"FREQ=" + name}

	if cfg.Interval > 1 {
		tokens = append(tokens, "INTERVAL="+strconv.Itoa(cfg.Interval))
	}

	if cfg.Frequency == FreqWeekly && len(cfg.DaysOfWeek) > 0 {
		days := normalizeDays(cfg.DaysOfWeek)
		codes := make([]string, 0, len(days))
		for _, d := range days {
			codes = append(codes, dayCodes[d])
		}
		tokens = append(tokens, "BYDAY="+strings.Join(codes, ","))
	}

	if (cfg.Frequency == FreqMonthly || cfg.Frequency == FreqYearly) && cfg.DayOfMonth > 0 {
		tokens = append(tokens, "BYMONTHDAY="+strconv.Itoa(cfg.DayOfMonth))
	}

	if cfg.Frequency == FreqYearly && cfg.MonthOfYear > 0 {
		tokens = append(tokens, "BYMONTH="+strconv.Itoa(cfg.MonthOfYear))
	}

	switch cfg.EndType {
	case EndOn:
		if !cfg.EndDate.IsZero() {
			tokens = append(tokens, "UNTIL="+endOfDayUTC(cfg.EndDate).Format(untilLayout))
		}
	case EndAfter:
		if cfg.Occurrences > 0 {
			tokens = append(tokens, "COUNT="+strconv.Itoa(cfg.Occurrences))
		}
	}

	return strings.Join(tokens, ";")
}

// DecodeRule parses a canonical rule string back into a config. An empty
// rule yields the non-recurring default. Token order is irrelevant and
// unknown tokens are ignored; malformed values are a validation error.
func DecodeRule(rule string) (RecurrenceConfig, error) {
	cfg := RecurrenceConfig{
		Frequency: FreqNone,
		Interval:  1,
		EndType:   EndNever,
	}

	rule = strings.TrimSpace(rule)
	if rule == "" {
		return cfg, nil
	}

	for _, token := range strings.Split(rule, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		eq := strings.Index(token, "=")
		if eq == -1 {
			continue
		}
		key := strings.ToUpper(token[:eq])
		value := token[eq+1:]

		switch key {
		case "FREQ":
			freq, ok := parseFrequency(value)
			if !ok {
				return cfg, NewValidationError("unknown FREQ value %q in rule %q", value, rule)
			}
			cfg.Frequency = freq

		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return cfg, NewValidationError("invalid INTERVAL value %q in rule %q", value, rule)
			}
			cfg.Interval = n

		case "BYDAY":
			days, err := parseByDay(value)
			if err != nil {
				return cfg, err
			}
			cfg.DaysOfWeek = days

		case "BYMONTHDAY":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 31 {
				return cfg, NewValidationError("invalid BYMONTHDAY value %q in rule %q", value, rule)
			}
			cfg.DayOfMonth = n

		case "BYMONTH":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 12 {
				return cfg, NewValidationError("invalid BYMONTH value %q in rule %q", value, rule)
			}
			cfg.MonthOfYear = n

		case "UNTIL":
			until, err := time.Parse(untilLayout, value)
			if err != nil {
				return cfg, NewValidationError("invalid UNTIL value %q in rule %q", value, rule)
			}
			cfg.EndType = EndOn
			cfg.EndDate = until

		case "COUNT":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return cfg, NewValidationError("invalid COUNT value %q in rule %q", value, rule)
			}
			cfg.EndType = EndAfter
			cfg.Occurrences = n
		}
	}

	return cfg, nil
}

func parseFrequency(value string) (Frequency, bool) {
	switch strings.ToUpper(value) {
	case "DAILY":
		return FreqDaily, true
	case "WEEKLY":
		return FreqWeekly, true
	case "MONTHLY":
		return FreqMonthly, true
	case "YEARLY":
		return FreqYearly, true
	}
	return FreqNone, false
}

func parseByDay(value string) ([]int, error) {
	var days []int
	for _, code := range strings.Split(value, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		found := -1
		for i, c := range dayCodes {
			if c == code {
				found = i
				break
			}
		}
		if found == -1 {
			return nil, NewValidationError("invalid BYDAY code %q", code)
		}
		days = append(days, found)
	}
	return normalizeDays(days), nil
}

// normalizeDays sorts the weekday set ascending and drops duplicates and
// out-of-range values.
func normalizeDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// endOfDayUTC returns 23:59:59 UTC on the calendar day of t.
func endOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
