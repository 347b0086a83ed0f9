package movement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birrificio/internal/domain/movement"
)

func TestDayNumber(t *testing.T) {
	start := time.Date(2024, 4, 2, 0, 0, 0, 0, time.Local)

	assert.Equal(t, 0, movement.DayNumber(start, start))
	assert.Equal(t, 0, movement.DayNumber(start, start.Add(23*time.Hour)), "same calendar day")
	assert.Equal(t, 3, movement.DayNumber(start, start.AddDate(0, 0, 3)))
	assert.Equal(t, -1, movement.DayNumber(start, start.AddDate(0, 0, -1)))
}

func TestDayNumberAcrossDSTSwitch(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	// March 30 2025 is the spring-forward day: only 23 hours long.
	springForward := time.Date(2025, 3, 30, 10, 0, 0, 0, rome)
	dayAfter := time.Date(2025, 3, 31, 10, 0, 0, 0, rome)

	assert.Equal(t, 1, movement.DayNumber(springForward, dayAfter))
	assert.Equal(t, -1, movement.DayNumber(dayAfter, springForward),
		"yesterday must count as a negative offset even on a short day")

	// October 26 2025 is the fall-back day: 25 hours long.
	fallBack := time.Date(2025, 10, 26, 10, 0, 0, 0, rome)
	assert.Equal(t, 1, movement.DayNumber(fallBack, time.Date(2025, 10, 27, 10, 0, 0, 0, rome)))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 5, 20, 1, 0, 0, 0, time.Local)
	assert.True(t, movement.SameDay(a, a.Add(22*time.Hour)))
	assert.False(t, movement.SameDay(a, a.AddDate(0, 0, 1)))
}
