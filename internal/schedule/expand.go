package schedule

import "time"

// DefaultMaxOccurrences bounds a single expansion so open-ended rules can
// never produce an unbounded series.
const DefaultMaxOccurrences = 10000

// Occurrence is one concrete, time-bounded instance derived from an event
// definition. Occurrences are ephemeral values; the core never persists
// them itself.
type Occurrence struct {
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	SourceEventID string    `json:"source_event_id"`
}

// Definition is the scheduling view of an event: its base time range plus
// a decoded recurrence config.
type Definition struct {
	ID         string
	StartsAt   time.Time
	EndsAt     time.Time
	Recurrence RecurrenceConfig
}

// Window is a half-open query interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the occurrence [start, end) overlaps the window.
func (w Window) Contains(start, end time.Time) bool {
	return start.Before(w.To) && end.After(w.From)
}

// Expander turns event definitions into concrete occurrences. It holds no
// state beyond its cap and is safe for concurrent use.
type Expander struct {
	maxOccurrences int
}

// NewExpander creates an expander with the given occurrence cap.
// A non-positive cap falls back to DefaultMaxOccurrences.
func NewExpander(maxOccurrences int) *Expander {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}
	return &Expander{maxOccurrences: maxOccurrences}
}

// Expand materializes the definition's occurrences within the window,
// ordered by start time. The series is seeded with the definition's own
// range, stepped by (frequency, interval), and bounded by whichever comes
// first of UNTIL, COUNT or the window's To edge. Every occurrence keeps
// the base definition's duration.
func (e *Expander) Expand(def Definition, window Window) ([]Occurrence, error) {
	if !def.EndsAt.After(def.StartsAt) {
		return nil, NewValidationError("event %s: ends_at must be after starts_at", def.ID)
	}
	if !window.To.After(window.From) {
		return nil, NewValidationError("query window is empty or inverted")
	}

	duration := def.EndsAt.Sub(def.StartsAt)
	cfg := def.Recurrence
	if cfg.Interval < 1 {
		cfg.Interval = 1
	}

	var until time.Time
	if cfg.EndType == EndOn && !cfg.EndDate.IsZero() {
		until = endOfDayUTC(cfg.EndDate)
	}

	// emit appends a series start and reports whether the walk should
	// continue. It stops on UNTIL, COUNT, the window edge, or one past the
	// cap (the overflow is detected after the walk).
	var series []time.Time
	emit := func(start time.Time) bool {
		if cfg.EndType == EndAfter && cfg.Occurrences > 0 && len(series) >= cfg.Occurrences {
			return false
		}
		if !until.IsZero() && start.After(until) {
			return false
		}
		if !start.Before(window.To) {
			return false
		}
		series = append(series, start)
		return len(series) <= e.maxOccurrences
	}

	switch cfg.Frequency {
	case FreqDaily:
		expandDaily(def.StartsAt, cfg.Interval, emit)
	case FreqWeekly:
		expandWeekly(def.StartsAt, cfg, emit)
	case FreqMonthly:
		expandMonthly(def.StartsAt, cfg, window.To, emit)
	case FreqYearly:
		expandYearly(def.StartsAt, cfg, window.To, emit)
	default:
		emit(def.StartsAt)
	}

	if len(series) > e.maxOccurrences {
		return nil, NewValidationError("event %s: expansion exceeds cap of %d occurrences", def.ID, e.maxOccurrences)
	}

	out := make([]Occurrence, 0, len(series))
	for _, start := range series {
		end := start.Add(duration)
		if !window.Contains(start, end) {
			continue
		}
		out = append(out, Occurrence{StartsAt: start, EndsAt: end, SourceEventID: def.ID})
	}
	return out, nil
}

// expandDaily emits the base start and then steps interval days at a time
// until emit reports a stop condition.
func expandDaily(base time.Time, interval int, emit func(time.Time) bool) {
	for t := base; emit(t); t = t.AddDate(0, 0, interval) {
	}
}

// expandWeekly seeds with the base start, then walks week blocks in
// interval-week jumps, emitting one occurrence per selected weekday in
// ascending order, anchored to the base time-of-day.
func expandWeekly(base time.Time, cfg RecurrenceConfig, emit func(time.Time) bool) {
	days := normalizeDays(cfg.DaysOfWeek)
	if len(days) == 0 {
		// No weekday selection behaves like a plain every-N-weeks repeat.
		expandDaily(base, 7*cfg.Interval, emit)
		return
	}

	if !emit(base) {
		return
	}

	// Anchor on the Sunday that starts the base week, at the base
	// time-of-day, so weekday offsets are plain day additions.
	weekStart := base.AddDate(0, 0, -int(base.Weekday()))

	for week := 0; ; week += cfg.Interval {
		blockStart := weekStart.AddDate(0, 0, week*7)
		for _, day := range days {
			candidate := blockStart.AddDate(0, 0, day)
			if !candidate.After(base) {
				// The seed already covers the base start; earlier days in
				// the first week are before the series begins.
				continue
			}
			if !emit(candidate) {
				return
			}
		}
	}
}

// expandMonthly emits the base start, then lands on DayOfMonth every
// interval months. Months lacking that day are skipped, not rolled over.
func expandMonthly(base time.Time, cfg RecurrenceConfig, windowTo time.Time, emit func(time.Time) bool) {
	if !emit(base) {
		return
	}

	day := cfg.DayOfMonth
	if day == 0 {
		day = base.Day()
	}

	for k := cfg.Interval; ; k += cfg.Interval {
		year, month := addMonths(base.Year(), base.Month(), k)
		if !monthStart(year, month, base.Location()).Before(windowTo) {
			return
		}
		if day > daysInMonth(year, month) {
			continue
		}
		candidate := time.Date(year, month, day,
			base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())
		if !emit(candidate) {
			return
		}
	}
}

// expandYearly emits the base start, then lands on (MonthOfYear,
// DayOfMonth) every interval years with the same skip policy, so e.g. a
// Feb 29 series skips non-leap years.
func expandYearly(base time.Time, cfg RecurrenceConfig, windowTo time.Time, emit func(time.Time) bool) {
	if !emit(base) {
		return
	}

	month := time.Month(cfg.MonthOfYear)
	if cfg.MonthOfYear == 0 {
		month = base.Month()
	}
	day := cfg.DayOfMonth
	if day == 0 {
		day = base.Day()
	}

	for k := cfg.Interval; ; k += cfg.Interval {
		year := base.Year() + k
		if !monthStart(year, month, base.Location()).Before(windowTo) {
			return
		}
		if day > daysInMonth(year, month) {
			continue
		}
		candidate := time.Date(year, month, day,
			base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())
		if !emit(candidate) {
			return
		}
	}
}

// addMonths adds k months to (year, month) without day normalization.
func addMonths(year int, month time.Month, k int) (int, time.Month) {
	total := year*12 + int(month) - 1 + k
	return total / 12, time.Month(total%12 + 1)
}

func monthStart(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
