package coverage

import (
	"testing"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBellSchedule(t *testing.T) {
	bell, err := ParseBellSchedule("08:00-08:55, 08:55-09:50,10:05-11:00")
	require.NoError(t, err)
	assert.Equal(t, int32(3), bell.MaxPeriod())

	window, err := bell.Window(1)
	require.NoError(t, err)
	assert.Equal(t, 8*60, window.Start)
	assert.Equal(t, 8*60+55, window.End)

	_, err = bell.Window(0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = bell.Window(4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseBellScheduleRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing separator", "08:00 08:55"},
		{"reversed interval", "09:00-08:00"},
		{"overlapping periods", "08:00-09:00,08:30-09:30"},
		{"hour out of range", "25:00-26:00"},
		{"garbage", "first period"},
		{"too many periods", "01:00-01:30,02:00-02:30,03:00-03:30,04:00-04:30,05:00-05:30,06:00-06:30,07:00-07:30,08:00-08:30,09:00-09:30,10:00-10:30,11:00-11:30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBellSchedule(tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLoadBellScheduleFallsBackToDefault(t *testing.T) {
	bell, err := LoadBellSchedule("")
	require.NoError(t, err)
	assert.Equal(t, int32(8), bell.MaxPeriod())

	bell, err = LoadBellSchedule("08:00-09:00,09:00-10:00")
	require.NoError(t, err)
	assert.Equal(t, int32(2), bell.MaxPeriod())
}

func TestClockToMinutes(t *testing.T) {
	minutes, err := ClockToMinutes("10:30")
	require.NoError(t, err)
	assert.Equal(t, 630, minutes)

	minutes, err = ClockToMinutes("10:30:00")
	require.NoError(t, err)
	assert.Equal(t, 630, minutes)

	_, err = ClockToMinutes("24:00")
	assert.Error(t, err)
	_, err = ClockToMinutes("abc")
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	window := PeriodWindow{Start: 540, End: 630} // 09:00-10:30

	assert.True(t, Overlaps(PeriodWindow{Start: 600, End: 650}, window))  // starts inside
	assert.True(t, Overlaps(PeriodWindow{Start: 500, End: 560}, window))  // ends inside
	assert.True(t, Overlaps(PeriodWindow{Start: 500, End: 700}, window))  // contains
	assert.True(t, Overlaps(PeriodWindow{Start: 560, End: 600}, window))  // contained
	assert.False(t, Overlaps(PeriodWindow{Start: 480, End: 540}, window)) // ends at window start
	assert.False(t, Overlaps(PeriodWindow{Start: 630, End: 700}, window)) // starts at window end
}
