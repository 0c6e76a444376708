package coverage

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitAssignment(t *testing.T) {
	f := newFakeStores()
	f.classes[7] = &domain.Class{ID: 7, Year: 3, Section: "B"}
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addTeacher(2, "Carlo", "Rossi", 3)
	f.addLesson(1, domain.WeekdayMonday, 3, ptr(int64(7)), ptr(int64(4)))
	f.addAbsence(10, 1, monday, monday)

	service := NewService(f.stores(), DefaultBellSchedule())

	assignment, err := service.CommitAssignment(10, 2, monday, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(10), assignment.AbsenceID)
	assert.Equal(t, int64(1), assignment.TeacherID)
	assert.Equal(t, int64(2), assignment.SubstituteID)
	assert.Equal(t, domain.AssignmentScheduled, assignment.Status)
	assert.Equal(t, "3B", assignment.ClassLabel)

	// One recoverable hour is spent by the substitution.
	assert.Equal(t, int32(2), f.teachers[2].RecoverableHours)
}

func TestCommitAssignmentConflictOnSecondCall(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addTeacher(2, "Carlo", "Rossi", 0)
	f.addTeacher(3, "Dario", "Deluca", 0)
	f.addLesson(1, domain.WeekdayMonday, 3, nil, nil)
	f.addAbsence(10, 1, monday, monday)

	service := NewService(f.stores(), DefaultBellSchedule())

	_, err := service.CommitAssignment(10, 2, monday, 3)
	require.NoError(t, err)

	_, err = service.CommitAssignment(10, 2, monday, 3)
	assert.ErrorIs(t, err, domain.ErrAssignmentConflict)

	_, err = service.CommitAssignment(10, 3, monday, 3)
	assert.ErrorIs(t, err, domain.ErrAssignmentConflict)

	active := 0
	for _, a := range f.assignments {
		if a.IsActive() {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestCommitAssignmentConstraintIsAuthoritative(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addTeacher(2, "Carlo", "Rossi", 0)
	f.addTeacher(3, "Dario", "Deluca", 0)
	f.addTeacher(4, "Elena", "Esposito", 0)
	f.addLesson(1, domain.WeekdayMonday, 3, nil, nil)
	f.addLesson(3, domain.WeekdayMonday, 3, nil, nil)
	f.addAbsence(10, 1, monday, monday)
	f.addAbsence(11, 3, monday, monday)

	service := NewService(f.stores(), DefaultBellSchedule())

	_, err := service.CommitAssignment(10, 2, monday, 3)
	require.NoError(t, err)

	// Booking the same substitute for a different absent teacher at the same
	// period is a conflict too.
	_, err = service.CommitAssignment(11, 2, monday, 3)
	assert.ErrorIs(t, err, domain.ErrAssignmentConflict)

	// A racing insert that slips past the advisory checks is still rejected
	// by the unique index and mapped to the same conflict error.
	err = f.InsertAssignment(&domain.Assignment{
		AbsenceID: 11, TeacherID: 3, SubstituteID: 2,
		Date: monday, Period: 3, Status: domain.AssignmentScheduled,
	})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, substituteAssignmentConstraint, pgErr.ConstraintName)

	_, err = service.CommitAssignment(11, 4, monday, 3)
	assert.NoError(t, err)
}

func TestCommitAssignmentStandbySubstituteKeepsHours(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addTeacher(2, "Carlo", "Rossi", 3)
	f.addLesson(1, domain.WeekdayMonday, 3, nil, nil)
	f.addStandby(2, domain.WeekdayMonday, 3)
	f.addAbsence(10, 1, monday, monday)

	service := NewService(f.stores(), DefaultBellSchedule())

	_, err := service.CommitAssignment(10, 2, monday, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.teachers[2].RecoverableHours)
}

func TestCommitAssignmentZeroBalanceStaysAtZero(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addTeacher(2, "Carlo", "Rossi", 0)
	f.addLesson(1, domain.WeekdayMonday, 3, nil, nil)
	f.addAbsence(10, 1, monday, monday)

	service := NewService(f.stores(), DefaultBellSchedule())

	_, err := service.CommitAssignment(10, 2, monday, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(0), f.teachers[2].RecoverableHours)
}

func TestCommitAssignmentRejections(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Bianchi", 0)
	f.addTeacher(2, "Carlo", "Rossi", 0)
	f.addAbsence(10, 1, monday, monday)

	service := NewService(f.stores(), DefaultBellSchedule())

	_, err := service.CommitAssignment(999, 2, monday, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.CommitAssignment(10, 999, monday, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.CommitAssignment(10, 2, time.Time{}, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.CommitAssignment(10, 2, monday, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.CommitAssignment(10, 2, sunday, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Date outside the absence range.
	_, err = service.CommitAssignment(10, 2, tuesday, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
