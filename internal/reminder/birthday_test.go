package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsBirthday_LeapDayFallsBackToFeb28(t *testing.T) {
	dob := date(1992, time.February, 29)

	assert.True(t, IsBirthday(dob, date(2025, time.February, 28)), "non-leap year triggers on Feb 28")
	assert.False(t, IsBirthday(dob, date(2025, time.March, 1)))
	assert.False(t, IsBirthday(dob, date(2024, time.February, 28)), "leap year waits for Feb 29")
	assert.True(t, IsBirthday(dob, date(2024, time.February, 29)))
}

func TestIsBirthday_OrdinaryDates(t *testing.T) {
	dob := date(1980, time.July, 4)

	assert.True(t, IsBirthday(dob, date(2026, time.July, 4)))
	assert.False(t, IsBirthday(dob, date(2026, time.July, 5)))
	assert.False(t, IsBirthday(date(1980, time.February, 28), date(2024, time.February, 29)))
}

func TestAgeOn(t *testing.T) {
	tests := []struct {
		name string
		dob  time.Time
		day  time.Time
		want int
	}{
		{"birthday today", date(1990, time.May, 10), date(2026, time.May, 10), 36},
		{"day before birthday", date(1990, time.May, 10), date(2026, time.May, 9), 35},
		{"leap baby on Feb 28 of non-leap year", date(1992, time.February, 29), date(2025, time.February, 28), 33},
		{"leap baby on Feb 28 of leap year", date(1992, time.February, 29), date(2024, time.February, 28), 31},
		{"leap baby on Feb 29", date(1992, time.February, 29), date(2024, time.February, 29), 32},
		{"born in the future", date(2030, time.January, 1), date(2026, time.January, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeOn(tt.dob, tt.day))
		})
	}
}

func TestBirthdayWindow(t *testing.T) {
	got := BirthdayWindow(date(2025, time.February, 26), 7)
	assert.Equal(t, []MonthDay{
		{2, 26}, {2, 27}, {2, 28}, {2, 29}, {3, 1}, {3, 2}, {3, 3}, {3, 4},
	}, got)

	got = BirthdayWindow(date(2024, time.February, 28), 2)
	assert.Equal(t, []MonthDay{{2, 28}, {2, 29}}, got)

	got = BirthdayWindow(date(2026, time.December, 31), 2)
	assert.Equal(t, []MonthDay{{12, 31}, {1, 1}}, got)

	assert.Empty(t, BirthdayWindow(date(2026, time.June, 1), 0))
}
