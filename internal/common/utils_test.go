package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysEnding(t *testing.T) {
	end := time.Date(2024, 3, 2, 17, 45, 0, 0, time.Local)

	days := DaysEnding(end, 7)

	require.Len(t, days, 7)
	assert.Equal(t, "2024-02-25", FormatDate(days[0]))
	assert.Equal(t, "2024-02-29", FormatDate(days[4]))
	assert.Equal(t, "2024-03-02", FormatDate(days[6]))
	for _, d := range days {
		assert.Zero(t, d.Hour())
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.Equal(t, Today(), d)

	_, err = ParseDate("03/10/2024")
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestRound(t *testing.T) {
	assert.Equal(t, 61.0, Round(3661.0/60, 1))
	assert.Equal(t, 1.5, Round(1500.0/1000, 2))
	assert.Equal(t, 7.57, Round(7.5666, 2))
	assert.Equal(t, 413.0, Round(412.6, 0))
}

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("invalid credentials supplied", "password", "credential"))
	assert.False(t, HasAny("rate limited", "password", "credential"))
	assert.False(t, HasAny("anything"))
}
