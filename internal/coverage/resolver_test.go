package coverage

import (
	"testing"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monday  = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
	sunday  = monday.AddDate(0, 0, -1)
)

func ptr[T any](v T) *T {
	return &v
}

func TestResolveGapsTeacherWithoutTimetable(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addAbsence(10, 1, monday, monday.AddDate(0, 0, 5))

	resolver := NewResolver(f.stores(), DefaultBellSchedule())

	gaps, err := resolver.ResolveGaps(monday, monday.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Empty(t, gaps)
}

func TestResolveGapsSingleDayFullAbsence(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.classes[7] = &domain.Class{ID: 7, Year: 3, Section: "B"}
	f.subjects[4] = &domain.Subject{ID: 4, Code: "MAT", Description: "Matematica"}
	slot := f.addLesson(1, domain.WeekdayMonday, 3, ptr(int64(7)), ptr(int64(4)))
	slot.Room = ptr("A12")
	f.addAbsence(10, 1, monday, monday)

	resolver := NewResolver(f.stores(), DefaultBellSchedule())

	gaps, err := resolver.ResolveGaps(monday, monday)
	require.NoError(t, err)
	require.Len(t, gaps, 1)

	gap := gaps[0]
	assert.Equal(t, int64(10), gap.AbsenceID)
	assert.Equal(t, int64(1), gap.TeacherID)
	assert.True(t, gap.Date.Equal(monday))
	assert.Equal(t, domain.WeekdayMonday, gap.Weekday)
	assert.Equal(t, int32(3), gap.Period)
	assert.Equal(t, "Matematica", gap.Subject)
	assert.Equal(t, "3B", gap.ClassLabel)
	assert.Equal(t, "A12", gap.Room)
}

func TestResolveGapsOverlappingAbsencesNoDuplicates(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addLesson(1, domain.WeekdayMonday, 3, nil, nil)
	f.addAbsence(10, 1, monday, monday)
	f.addAbsence(11, 1, monday, tuesday)

	resolver := NewResolver(f.stores(), DefaultBellSchedule())

	gaps, err := resolver.ResolveGaps(monday, monday)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, int32(3), gaps[0].Period)
}

func TestResolveGapsSkipsSundaysAndStandbySlots(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addLesson(1, domain.WeekdayMonday, 1, nil, nil)
	f.addStandby(1, domain.WeekdayMonday, 2)
	f.addAbsence(10, 1, sunday, monday)

	resolver := NewResolver(f.stores(), DefaultBellSchedule())

	gaps, err := resolver.ResolveGaps(sunday, monday)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.True(t, gaps[0].Date.Equal(monday))
	assert.Equal(t, int32(1), gaps[0].Period)
}

func TestResolveGapsSkipsAbsenceWithMissingTeacher(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addLesson(1, domain.WeekdayMonday, 1, nil, nil)
	f.addAbsence(10, 1, monday, monday)
	f.addAbsence(11, 999, monday, monday) // teacher deleted after creation

	resolver := NewResolver(f.stores(), DefaultBellSchedule())

	gaps, err := resolver.ResolveGaps(monday, monday)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, int64(1), gaps[0].TeacherID)
}

func TestResolveGapsExcludesCoveredSlots(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addTeacher(2, "Carlo", "Rossi", 0)
	f.addLesson(1, domain.WeekdayMonday, 1, nil, nil)
	f.addLesson(1, domain.WeekdayMonday, 2, nil, nil)
	f.addAbsence(10, 1, monday, monday)

	stores := f.stores()
	bell := DefaultBellSchedule()
	resolver := NewResolver(stores, bell)
	service := NewService(stores, bell)

	gaps, err := resolver.ResolveGaps(monday, monday)
	require.NoError(t, err)
	require.Len(t, gaps, 2)

	_, err = service.CommitAssignment(10, 2, monday, 1)
	require.NoError(t, err)

	gaps, err = resolver.ResolveGaps(monday, monday)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, int32(2), gaps[0].Period)
}

func TestResolveGapsSortsByDateThenPeriod(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addTeacher(2, "Carlo", "Rossi", 0)
	f.addLesson(1, domain.WeekdayTuesday, 1, nil, nil)
	f.addLesson(1, domain.WeekdayMonday, 4, nil, nil)
	f.addLesson(2, domain.WeekdayMonday, 2, nil, nil)
	f.addAbsence(10, 1, monday, tuesday)
	f.addAbsence(11, 2, monday, monday)

	resolver := NewResolver(f.stores(), DefaultBellSchedule())

	gaps, err := resolver.ResolveGaps(monday, tuesday)
	require.NoError(t, err)
	require.Len(t, gaps, 3)

	assert.True(t, gaps[0].Date.Equal(monday))
	assert.Equal(t, int32(2), gaps[0].Period)
	assert.True(t, gaps[1].Date.Equal(monday))
	assert.Equal(t, int32(4), gaps[1].Period)
	assert.True(t, gaps[2].Date.Equal(tuesday))
	assert.Equal(t, int32(1), gaps[2].Period)
}

func TestResolveGapsTimeWindowedAbsence(t *testing.T) {
	bell, err := ParseBellSchedule("08:00-08:50,09:00-09:50,10:00-10:50")
	require.NoError(t, err)

	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addLesson(1, domain.WeekdayMonday, 1, nil, nil)
	f.addLesson(1, domain.WeekdayMonday, 2, nil, nil)
	f.addLesson(1, domain.WeekdayMonday, 3, nil, nil)
	// Absent from 09:00 to 10:30: the third period (10:00-10:50) overlaps at
	// the window's tail and must be included.
	f.addWindowedAbsence(10, 1, monday, "09:00", "10:30")

	resolver := NewResolver(f.stores(), bell)

	gaps, err := resolver.ResolveGaps(monday, monday)
	require.NoError(t, err)
	require.Len(t, gaps, 2)
	assert.Equal(t, int32(2), gaps[0].Period)
	assert.Equal(t, int32(3), gaps[1].Period)
}

func TestResolveGapsTimeWindowBetweenPeriods(t *testing.T) {
	bell, err := ParseBellSchedule("08:00-08:50,09:00-09:50")
	require.NoError(t, err)

	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addLesson(1, domain.WeekdayMonday, 1, nil, nil)
	f.addLesson(1, domain.WeekdayMonday, 2, nil, nil)
	// The window sits entirely in the break between the two periods.
	f.addWindowedAbsence(10, 1, monday, "08:50", "09:00")

	resolver := NewResolver(f.stores(), bell)

	gaps, err := resolver.ResolveGaps(monday, monday)
	require.NoError(t, err)
	assert.Empty(t, gaps)
}

func TestResolveGapsMissingReferencesFallBack(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addLesson(1, domain.WeekdayMonday, 1, ptr(int64(77)), ptr(int64(88))) // class and subject records are gone
	f.addAbsence(10, 1, monday, monday)

	resolver := NewResolver(f.stores(), DefaultBellSchedule())

	gaps, err := resolver.ResolveGaps(monday, monday)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, "N/D", gaps[0].Subject)
	assert.Equal(t, "#77", gaps[0].ClassLabel)
}

func TestResolveGapsInvalidRange(t *testing.T) {
	resolver := NewResolver(newFakeStores().stores(), DefaultBellSchedule())

	_, err := resolver.ResolveGaps(time.Time{}, monday)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = resolver.ResolveGaps(tuesday, monday)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
