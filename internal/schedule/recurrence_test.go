package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRule(t *testing.T) {
	tests := []struct {
		name string
		cfg  RecurrenceConfig
		want string
	}{
		{
			name: "none encodes empty",
			cfg:  RecurrenceConfig{Frequency: FreqNone, Interval: 1, EndType: EndNever},
			want: "",
		},
		{
			name: "daily every day",
			cfg:  RecurrenceConfig{Frequency: FreqDaily, Interval: 1, EndType: EndNever},
			want: "FREQ=DAILY",
		},
		{
			name: "daily interval above one is emitted",
			cfg:  RecurrenceConfig{Frequency: FreqDaily, Interval: 3, EndType: EndNever},
			want: "FREQ=DAILY;INTERVAL=3",
		},
		{
			name: "weekly with weekdays sorted ascending",
			cfg: RecurrenceConfig{
				Frequency:  FreqWeekly,
				Interval:   1,
				DaysOfWeek: []int{5, 1, 3},
				EndType:    EndNever,
			},
			want: "FREQ=WEEKLY;BYDAY=MO,WE,FR",
		},
		{
			name: "weekly drops duplicate days",
			cfg: RecurrenceConfig{
				Frequency:  FreqWeekly,
				Interval:   2,
				DaysOfWeek: []int{1, 1, 0},
				EndType:    EndNever,
			},
			want: "FREQ=WEEKLY;INTERVAL=2;BYDAY=SU,MO",
		},
		{
			name: "monthly with day of month",
			cfg: RecurrenceConfig{
				Frequency:  FreqMonthly,
				Interval:   1,
				DayOfMonth: 15,
				EndType:    EndNever,
			},
			want: "FREQ=MONTHLY;BYMONTHDAY=15",
		},
		{
			name: "yearly with month and day",
			cfg: RecurrenceConfig{
				Frequency:   FreqYearly,
				Interval:    1,
				DayOfMonth:  29,
				MonthOfYear: 2,
				EndType:     EndNever,
			},
			want: "FREQ=YEARLY;BYMONTHDAY=29;BYMONTH=2",
		},
		{
			name: "until expands to end of day UTC",
			cfg: RecurrenceConfig{
				Frequency: FreqDaily,
				Interval:  1,
				EndType:   EndOn,
				EndDate:   time.Date(2024, 6, 30, 9, 15, 0, 0, time.UTC),
			},
			want: "FREQ=DAILY;UNTIL=20240630T235959Z",
		},
		{
			name: "count",
			cfg: RecurrenceConfig{
				Frequency:   FreqWeekly,
				Interval:    1,
				DaysOfWeek:  []int{2},
				EndType:     EndAfter,
				Occurrences: 10,
			},
			want: "FREQ=WEEKLY;BYDAY=TU;COUNT=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeRule(tt.cfg))
		})
	}
}

func TestDecodeRule(t *testing.T) {
	t.Run("empty rule yields non-recurring default", func(t *testing.T) {
		cfg, err := DecodeRule("")
		require.NoError(t, err)
		assert.Equal(t, FreqNone, cfg.Frequency)
		assert.Equal(t, 1, cfg.Interval)
		assert.Equal(t, EndNever, cfg.EndType)
	})

	t.Run("token order is irrelevant", func(t *testing.T) {
		a, err := DecodeRule("FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE")
		require.NoError(t, err)
		b, err := DecodeRule("BYDAY=WE,MO;INTERVAL=2;FREQ=WEEKLY")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("unknown tokens are ignored", func(t *testing.T) {
		cfg, err := DecodeRule("FREQ=DAILY;WKST=MO;X-CUSTOM=1")
		require.NoError(t, err)
		assert.Equal(t, FreqDaily, cfg.Frequency)
	})

	t.Run("until parses to EndOn", func(t *testing.T) {
		cfg, err := DecodeRule("FREQ=MONTHLY;BYMONTHDAY=31;UNTIL=20251231T235959Z")
		require.NoError(t, err)
		assert.Equal(t, EndOn, cfg.EndType)
		assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), cfg.EndDate)
		assert.Equal(t, 31, cfg.DayOfMonth)
	})

	t.Run("count parses to EndAfter", func(t *testing.T) {
		cfg, err := DecodeRule("FREQ=DAILY;COUNT=5")
		require.NoError(t, err)
		assert.Equal(t, EndAfter, cfg.EndType)
		assert.Equal(t, 5, cfg.Occurrences)
	})

	malformed := []struct {
		name string
		rule string
	}{
		{"unknown frequency", "FREQ=HOURLY"},
		{"zero interval", "FREQ=DAILY;INTERVAL=0"},
		{"non-numeric interval", "FREQ=DAILY;INTERVAL=abc"},
		{"bad weekday code", "FREQ=WEEKLY;BYDAY=XX"},
		{"month day out of range", "FREQ=MONTHLY;BYMONTHDAY=32"},
		{"month out of range", "FREQ=YEARLY;BYMONTH=13"},
		{"unparseable until", "FREQ=DAILY;UNTIL=tomorrow"},
		{"zero count", "FREQ=DAILY;COUNT=0"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRule(tt.rule)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindValidation))
		})
	}
}

func TestRuleRoundTrip(t *testing.T) {
	rules := []string{
		"FREQ=DAILY",
		"FREQ=DAILY;INTERVAL=2",
		"FREQ=WEEKLY;BYDAY=MO,WE,FR",
		"FREQ=WEEKLY;INTERVAL=3;BYDAY=SU,SA;COUNT=12",
		"FREQ=MONTHLY;BYMONTHDAY=31",
		"FREQ=YEARLY;BYMONTHDAY=29;BYMONTH=2;UNTIL=20301231T235959Z",
	}
	for _, rule := range rules {
		t.Run(rule, func(t *testing.T) {
			cfg, err := DecodeRule(rule)
			require.NoError(t, err)
			assert.Equal(t, rule, EncodeRule(cfg))
		})
	}
}
