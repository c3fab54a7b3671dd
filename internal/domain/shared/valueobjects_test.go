package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArea(t *testing.T) {
	a, err := ParseArea("swang")
	require.NoError(t, err)
	assert.Equal(t, AreaSwang, a)

	a, err = ParseArea(" ALL ")
	require.NoError(t, err)
	assert.True(t, a.IsAll())
	assert.False(t, a.IsCenter())

	_, err = ParseArea("Ranchi")
	assert.ErrorIs(t, err, ErrInvalidArea)
	assert.True(t, IsValidation(err))
}

func TestArea_CentersAndIndex(t *testing.T) {
	assert.Equal(t, []Area{AreaKathara}, AreaKathara.Centers())
	assert.Equal(t, Areas(), AreaAll.Centers())
	assert.Equal(t, 0, AreaSwang.Index())
	assert.Equal(t, 4, AreaPhusro.Index())
	assert.Equal(t, -1, Area("Ranchi").Index())
}

func TestAreas_ReturnsCopy(t *testing.T) {
	list := Areas()
	list[0] = "Mutated"
	assert.Equal(t, AreaSwang, Areas()[0])
}

func TestDomainError_Matching(t *testing.T) {
	err := WrapError("attendance", "Submit", ErrStorageUnavailable, "insert failed", errors.New("conn refused"))

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "attendance.Submit")

	assert.False(t, IsRetryable(ErrAttendanceOutcomeUnknown))
	assert.ErrorIs(t, ErrAttendanceAlreadySubmitted, ErrAlreadySubmitted)
}

func TestIncompleteRosterError(t *testing.T) {
	err := error(&IncompleteRosterError{
		Area:     "Swang",
		Mismatch: RosterMismatch{Missing: []string{"a"}, Unknown: []string{"x", "y"}},
	})

	assert.ErrorIs(t, err, ErrIncompleteRoster)
	assert.Contains(t, err.Error(), "1 missing")
	assert.Contains(t, err.Error(), "2 unknown")

	var mismatch *IncompleteRosterError
	require.True(t, errors.As(err, &mismatch))
	assert.False(t, mismatch.Mismatch.Empty())
}

func TestNormalizeArea(t *testing.T) {
	assert.Equal(t, AreaNawadih, NormalizeArea("nawadih"))
	assert.Equal(t, AreaAll, NormalizeArea("all"))
	assert.Equal(t, Area("Ranchi"), NormalizeArea(" Ranchi "))
}
