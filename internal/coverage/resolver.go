package coverage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

// Resolver derives the concrete coverage gaps left by absences over a date
// range. Resolution is a pure read over the stores and is best-effort: a
// broken record is logged and skipped, never aborting the whole scan.
type Resolver struct {
	stores Stores
	bell   *BellSchedule
}

func NewResolver(stores Stores, bell *BellSchedule) *Resolver {
	return &Resolver{
		stores: stores,
		bell:   bell,
	}
}

// ResolveGaps lists every (date, period) of the inclusive range [from, to]
// where an absent teacher's lesson has no active assignment yet, sorted by
// date then period.
func (r *Resolver) ResolveGaps(from, to time.Time) ([]Gap, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: date range is required", domain.ErrInvalidInput)
	}

	from = domain.TruncateToDay(from)
	to = domain.TruncateToDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes range start", domain.ErrInvalidInput)
	}

	absences, err := r.stores.Absences.GetAbsencesOverlapping(from, to)
	if err != nil {
		return nil, err
	}

	gaps := make([]Gap, 0)
	// Overlapping absences for the same teacher must not produce the same
	// slot twice.
	seen := make(map[string]bool)

	classLabels := make(map[int64]string)
	subjectNames := make(map[int64]string)

	for _, absence := range absences {
		if _, err := r.stores.Teachers.GetTeacherByID(absence.TeacherID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				slog.Warn("absence references a missing teacher, skipping",
					"absenceID", absence.ID, "teacherID", absence.TeacherID)
				continue
			}
			return nil, err
		}

		slots, err := r.stores.Timetable.GetSlotsByTeacher(absence.TeacherID, true)
		if err != nil {
			return nil, err
		}
		if len(slots) == 0 {
			continue
		}

		slotsByWeekday := make(map[domain.Weekday][]*domain.LessonSlot)
		for _, slot := range slots {
			slotsByWeekday[slot.Weekday] = append(slotsByWeekday[slot.Weekday], slot)
		}

		start := domain.TruncateToDay(absence.StartDate)
		if start.Before(from) {
			start = from
		}
		end := domain.TruncateToDay(absence.EndDate)
		if end.After(to) {
			end = to
		}

		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			weekday, schoolDay := domain.WeekdayOf(day)
			if !schoolDay {
				continue
			}

			for _, slot := range slotsByWeekday[weekday] {
				include, err := r.slotFallsInAbsence(slot, absence)
				if err != nil {
					slog.Warn("cannot test slot against absence window, skipping",
						"absenceID", absence.ID, "slotID", slot.ID, "error", err)
					continue
				}
				if !include {
					continue
				}

				key := fmt.Sprintf("%d|%s|%d", absence.TeacherID, day.Format(time.DateOnly), slot.Period)
				if seen[key] {
					continue
				}

				covered, err := r.slotAlreadyCovered(absence.TeacherID, day, slot.Period)
				if err != nil {
					return nil, err
				}
				if covered {
					seen[key] = true
					continue
				}

				gap := Gap{
					AbsenceID:  absence.ID,
					TeacherID:  absence.TeacherID,
					Date:       day,
					Weekday:    weekday,
					Period:     slot.Period,
					SubjectID:  slot.SubjectID,
					Subject:    r.subjectDisplay(slot.SubjectID, subjectNames),
					ClassLabel: r.classDisplay(slot.ClassID, classLabels),
				}
				if slot.Room != nil {
					gap.Room = *slot.Room
				}

				gaps = append(gaps, gap)
				seen[key] = true
			}
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		if !gaps[i].Date.Equal(gaps[j].Date) {
			return gaps[i].Date.Before(gaps[j].Date)
		}
		return gaps[i].Period < gaps[j].Period
	})

	return gaps, nil
}

// slotFallsInAbsence decides period eligibility. A full-day absence takes
// every slot; a time-windowed one takes only slots whose canonical clock
// interval overlaps the [entry, exit) window.
func (r *Resolver) slotFallsInAbsence(slot *domain.LessonSlot, absence *domain.Absence) (bool, error) {
	if !absence.TimeWindowed {
		return true, nil
	}
	if absence.EntryTime == nil || absence.ExitTime == nil {
		return false, fmt.Errorf("time-windowed absence %d lacks entry or exit time", absence.ID)
	}

	entry, err := ClockToMinutes(*absence.EntryTime)
	if err != nil {
		return false, err
	}
	exit, err := ClockToMinutes(*absence.ExitTime)
	if err != nil {
		return false, err
	}

	window, err := r.bell.Window(slot.Period)
	if err != nil {
		return false, err
	}

	return Overlaps(window, PeriodWindow{Start: entry, End: exit}), nil
}

func (r *Resolver) slotAlreadyCovered(teacherID int64, date time.Time, period int32) (bool, error) {
	_, err := r.stores.Assignments.GetActiveAssignmentByKey(teacherID, date, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

const unknownDisplay = "N/D"

func (r *Resolver) subjectDisplay(subjectID *int64, cache map[int64]string) string {
	if subjectID == nil {
		return unknownDisplay
	}
	if name, ok := cache[*subjectID]; ok {
		return name
	}

	name := unknownDisplay
	subject, err := r.stores.Catalog.GetSubjectByID(*subjectID)
	switch {
	case err == nil:
		name = subject.Code
		if subject.Description != "" {
			name = subject.Description
		}
	case errors.Is(err, sql.ErrNoRows):
		slog.Warn("lesson slot references a missing subject", "subjectID", *subjectID)
	default:
		slog.Warn("cannot resolve subject", "subjectID", *subjectID, "error", err)
	}

	cache[*subjectID] = name
	return name
}

func (r *Resolver) classDisplay(classID *int64, cache map[int64]string) string {
	if classID == nil {
		return ""
	}
	if label, ok := cache[*classID]; ok {
		return label
	}

	// Fall back to the raw identifier when the class record is gone.
	label := fmt.Sprintf("#%d", *classID)
	class, err := r.stores.Catalog.GetClassByID(*classID)
	switch {
	case err == nil:
		label = class.Label()
	case errors.Is(err, sql.ErrNoRows):
		slog.Warn("lesson slot references a missing class", "classID", *classID)
	default:
		slog.Warn("cannot resolve class", "classID", *classID, "error", err)
	}

	cache[*classID] = label
	return label
}
