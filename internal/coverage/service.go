package coverage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

// Names of the partial unique indexes guarding double-booking. The database
// constraint is the authoritative guard; the in-process existence check is
// only advisory.
const (
	activeAssignmentConstraint     = "assignments_active_key"
	substituteAssignmentConstraint = "assignments_substitute_key"
)

// Service commits substitute assignments against the stores.
type Service struct {
	stores Stores
	bell   *BellSchedule
}

func NewService(stores Stores, bell *BellSchedule) *Service {
	return &Service{
		stores: stores,
		bell:   bell,
	}
}

// CommitAssignment books substituteID to cover the absent teacher's period on
// the given date. It rejects with ErrAssignmentConflict when the slot already
// has an active assignment, and decrements the substitute's recoverable-hours
// balance by one unless the substitute is on standby at that position or the
// balance is already zero.
func (s *Service) CommitAssignment(absenceID, substituteID int64, date time.Time, period int32) (*domain.Assignment, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if period < 1 || period > s.bell.MaxPeriod() {
		return nil, fmt.Errorf("%w: period %d out of range 1..%d", domain.ErrInvalidInput, period, s.bell.MaxPeriod())
	}
	weekday, schoolDay := domain.WeekdayOf(date)
	if !schoolDay {
		return nil, fmt.Errorf("%w: no lessons are scheduled on Sundays", domain.ErrInvalidInput)
	}

	absence, err := s.stores.Absences.GetAbsenceByID(absenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: absence %d", domain.ErrNotFound, absenceID)
		}
		return nil, err
	}
	if !absence.CoversDate(date) {
		return nil, fmt.Errorf("%w: %s is outside the absence range", domain.ErrInvalidInput, date.Format(time.DateOnly))
	}

	substitute, err := s.stores.Teachers.GetTeacherByID(substituteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: teacher %d", domain.ErrNotFound, substituteID)
		}
		return nil, err
	}

	// Advisory pre-checks. The unique indexes still decide under concurrency.
	if _, err := s.stores.Assignments.GetActiveAssignmentByKey(absence.TeacherID, date, period); err == nil {
		return nil, domain.ErrAssignmentConflict
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if booked, err := s.stores.Assignments.HasActiveAssignmentForSubstitute(substitute.ID, date, period); err != nil {
		return nil, err
	} else if booked {
		return nil, domain.ErrAssignmentConflict
	}

	slot, err := s.absentTeacherSlot(absence.TeacherID, weekday, period)
	if err != nil {
		return nil, err
	}

	assignment := &domain.Assignment{
		AbsenceID:    absence.ID,
		TeacherID:    absence.TeacherID,
		SubstituteID: substitute.ID,
		Date:         domain.TruncateToDay(date),
		Period:       period,
		Status:       domain.AssignmentScheduled,
	}
	if slot != nil {
		assignment.SubjectID = slot.SubjectID
		assignment.ClassLabel = s.classLabelOf(slot)
	}

	if err := s.stores.Assignments.InsertAssignment(assignment); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.ConstraintName {
			case activeAssignmentConstraint, substituteAssignmentConstraint:
				return nil, domain.ErrAssignmentConflict
			}
		}
		return nil, err
	}

	standby, err := s.isStandbyAt(substitute.ID, weekday, period)
	if err != nil {
		return nil, err
	}
	if !standby && substitute.RecoverableHours > 0 {
		if _, err := s.stores.Teachers.AdjustRecoverableHours(substitute.ID, -1); err != nil {
			return nil, err
		}
	}

	return assignment, nil
}

// absentTeacherSlot finds the lesson being covered so the assignment can
// carry its class and subject. A missing slot is tolerated: staff may book
// coverage for positions outside the imported timetable.
func (s *Service) absentTeacherSlot(teacherID int64, weekday domain.Weekday, period int32) (*domain.LessonSlot, error) {
	slots, err := s.stores.Timetable.GetSlotsByTeacher(teacherID, true)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		if slot.Weekday == weekday && slot.Period == period {
			return slot, nil
		}
	}
	return nil, nil
}

func (s *Service) classLabelOf(slot *domain.LessonSlot) string {
	if slot.ClassID == nil {
		return ""
	}
	class, err := s.stores.Catalog.GetClassByID(*slot.ClassID)
	if err != nil {
		return fmt.Sprintf("#%d", *slot.ClassID)
	}
	return class.Label()
}

func (s *Service) isStandbyAt(teacherID int64, weekday domain.Weekday, period int32) (bool, error) {
	slots, err := s.stores.Timetable.GetSlotsByWeekdayAndPeriod(weekday, period, true)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot.TeacherID == teacherID {
			return true, nil
		}
	}
	return false, nil
}
