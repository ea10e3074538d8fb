package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want Status
	}{
		{-1, StatusExpired},
		{-400, StatusExpired},
		{0, StatusExpiringSoon},
		{30, StatusExpiringSoon},
		{31, StatusActive},
		{365, StatusActive},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusFor(c.days), "days=%d", c.days)
	}
}

func TestDaysRemainingCeilsWithinDay(t *testing.T) {
	exp := Date{Year: 2026, Month: time.October, Day: 19}

	morning := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	evening := time.Date(2026, time.October, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysRemaining(exp, morning))
	assert.Equal(t, 0, DaysRemaining(exp, evening), "expiring later today still counts as 0")

	nextDay := time.Date(2026, time.October, 20, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, -1, DaysRemaining(exp, nextDay))

	dayBefore := time.Date(2026, time.October, 18, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysRemaining(exp, dayBefore))
}

func TestDaysRemainingMonotonic(t *testing.T) {
	exp := Date{Year: 2027, Month: time.January, Day: 10}
	now := time.Date(2026, time.December, 1, 9, 30, 0, 0, time.UTC)

	first := DaysRemaining(exp, now)
	assert.Equal(t, first, DaysRemaining(exp, now), "fixed now gives a fixed answer")
	assert.Equal(t, 40, first)

	prev := first
	for i := 1; i <= 60; i++ {
		got := DaysRemaining(exp, now.AddDate(0, 0, i))
		assert.Equal(t, prev-1, got)
		prev = got
	}
}

func TestDaysRemainingAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 2026-11-01 is a 25-hour day in New York.
	now := time.Date(2026, time.November, 1, 0, 0, 0, 0, loc)
	exp := Date{Year: 2026, Month: time.November, Day: 2}
	assert.Equal(t, 1, DaysRemaining(exp, now))
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2026-12-31")
	require.NoError(t, err)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2026-12-31"`, string(b))
	assert.Equal(t, "Dec 31, 2026", d.Display())

	var back Date
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, d, back)

	require.NoError(t, back.UnmarshalJSON([]byte(`""`)))
	assert.True(t, back.IsZero())

	assert.Error(t, back.UnmarshalJSON([]byte(`"31/12/2026"`)))
}
