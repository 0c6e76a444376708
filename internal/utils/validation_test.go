package utils

import (
	"testing"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string {
	return &s
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("2025-03-03", "2025-03-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), to)

	_, _, err = ParseDateRange("", "2025-03-07")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = ParseDateRange("03/03/2025", "2025-03-07")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = ParseDateRange("2025-03-07", "2025-03-03")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateAbsence(t *testing.T) {
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	absence := &domain.Absence{StartDate: day, EndDate: day}
	assert.NoError(t, ValidateAbsence(absence))

	absence = &domain.Absence{StartDate: day, EndDate: day.AddDate(0, 0, -1)}
	assert.ErrorIs(t, ValidateAbsence(absence), domain.ErrInvalidInput)

	absence = &domain.Absence{StartDate: day, EndDate: day, EntryTime: strptr("09:00")}
	assert.ErrorIs(t, ValidateAbsence(absence), domain.ErrInvalidInput)

	absence = &domain.Absence{StartDate: day, EndDate: day, TimeWindowed: true}
	assert.ErrorIs(t, ValidateAbsence(absence), domain.ErrInvalidInput)

	absence = &domain.Absence{
		StartDate: day, EndDate: day, TimeWindowed: true,
		EntryTime: strptr("10:30"), ExitTime: strptr("09:00"),
	}
	assert.ErrorIs(t, ValidateAbsence(absence), domain.ErrInvalidInput)

	absence = &domain.Absence{
		StartDate: day, EndDate: day, TimeWindowed: true,
		EntryTime: strptr("09:00"), ExitTime: strptr("10:30"),
	}
	assert.NoError(t, ValidateAbsence(absence))
}

func TestValidateLessonSlots(t *testing.T) {
	classID := int64(7)

	slots := []*domain.LessonSlot{
		{Weekday: domain.WeekdayMonday, Period: 1, Kind: domain.SlotKindLesson, ClassID: &classID},
		{Weekday: domain.WeekdayMonday, Period: 2, Kind: domain.SlotKindStandby},
	}
	assert.NoError(t, ValidateLessonSlots(slots, 8))

	slots = []*domain.LessonSlot{{Weekday: "SUN", Period: 1, Kind: domain.SlotKindLesson}}
	assert.ErrorIs(t, ValidateLessonSlots(slots, 8), domain.ErrInvalidInput)

	slots = []*domain.LessonSlot{{Weekday: domain.WeekdayMonday, Period: 9, Kind: domain.SlotKindLesson}}
	assert.ErrorIs(t, ValidateLessonSlots(slots, 8), domain.ErrInvalidInput)

	slots = []*domain.LessonSlot{{Weekday: domain.WeekdayMonday, Period: 1, Kind: "lab"}}
	assert.ErrorIs(t, ValidateLessonSlots(slots, 8), domain.ErrInvalidInput)

	slots = []*domain.LessonSlot{
		{Weekday: domain.WeekdayMonday, Period: 1, Kind: domain.SlotKindStandby, ClassID: &classID},
	}
	assert.ErrorIs(t, ValidateLessonSlots(slots, 8), domain.ErrInvalidInput)

	slots = []*domain.LessonSlot{
		{Weekday: domain.WeekdayMonday, Period: 1, Kind: domain.SlotKindLesson},
		{Weekday: domain.WeekdayMonday, Period: 1, Kind: domain.SlotKindLesson},
	}
	assert.ErrorIs(t, ValidateLessonSlots(slots, 8), domain.ErrInvalidInput)
}
