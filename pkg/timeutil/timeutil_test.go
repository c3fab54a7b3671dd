package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToday_UsesLocation(t *testing.T) {
	// 20:00 UTC on Jan 1 is already Jan 2 in IST.
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-02", FormatDate(Today(now, IST)))
	assert.Equal(t, "2024-01-01", FormatDate(Today(now, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", MonthKey(d))
	assert.Equal(t, "Feb 2024", MonthLabel(d))

	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)

	_, err = ParseDate("01/02/2024")
	assert.Error(t, err)
}

func TestIsAfterDay(t *testing.T) {
	a := time.Date(2024, 1, 2, 0, 30, 0, 0, time.UTC)
	b := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)

	assert.True(t, IsAfterDay(a, b))
	assert.False(t, IsAfterDay(b, a))
	assert.False(t, IsAfterDay(a, a))
}

func TestLoadLocation_FallsBackToIST(t *testing.T) {
	assert.Equal(t, IST, LoadLocation(""))
	assert.Equal(t, IST, LoadLocation("Nowhere/Invalid"))
}
