package utils

import (
	"fmt"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

// ParseDate reads a "YYYY-MM-DD" value into a midnight UTC time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q", domain.ErrInvalidInput, s)
	}
	return t, nil
}

// ParseDateRange reads and orders a from/to query pair.
func ParseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from and to dates are required", domain.ErrInvalidInput)
	}

	from, err := ParseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range end precedes range start", domain.ErrInvalidInput)
	}

	return from, to, nil
}

// ValidateAbsence checks the cross-field rules a validator tag cannot
// express: range ordering and time-window consistency.
func ValidateAbsence(absence *domain.Absence) error {
	if absence.EndDate.Before(absence.StartDate) {
		return fmt.Errorf("%w: absence ends before it starts", domain.ErrInvalidInput)
	}

	if !absence.TimeWindowed {
		if absence.EntryTime != nil || absence.ExitTime != nil {
			return fmt.Errorf("%w: entry and exit times require the time-windowed flag", domain.ErrInvalidInput)
		}
		return nil
	}

	if absence.EntryTime == nil || absence.ExitTime == nil {
		return fmt.Errorf("%w: a time-windowed absence needs both entry and exit times", domain.ErrInvalidInput)
	}

	entry, err := parseClock(*absence.EntryTime)
	if err != nil {
		return err
	}
	exit, err := parseClock(*absence.ExitTime)
	if err != nil {
		return err
	}
	if !exit.After(entry) {
		return fmt.Errorf("%w: exit time must be after entry time", domain.ErrInvalidInput)
	}

	return nil
}

// ValidateLessonSlots checks an imported timetable before it replaces the
// stored one: enumerated weekday, period within the school day, kind known,
// and no two slots on the same weekly position.
func ValidateLessonSlots(slots []*domain.LessonSlot, maxPeriod int32) error {
	type position struct {
		weekday domain.Weekday
		period  int32
	}
	seen := make(map[position]bool)

	for i, slot := range slots {
		if _, err := domain.ParseWeekday(string(slot.Weekday)); err != nil {
			return fmt.Errorf("%w: slot %d: unknown weekday %q", domain.ErrInvalidInput, i+1, slot.Weekday)
		}
		if slot.Period < 1 || slot.Period > maxPeriod {
			return fmt.Errorf("%w: slot %d: period %d out of range 1..%d", domain.ErrInvalidInput, i+1, slot.Period, maxPeriod)
		}
		if slot.Kind != domain.SlotKindLesson && slot.Kind != domain.SlotKindStandby {
			return fmt.Errorf("%w: slot %d: unknown kind %q", domain.ErrInvalidInput, i+1, slot.Kind)
		}
		if slot.Kind == domain.SlotKindStandby && (slot.ClassID != nil || slot.SubjectID != nil) {
			return fmt.Errorf("%w: slot %d: a standby slot carries no class or subject", domain.ErrInvalidInput, i+1)
		}

		pos := position{weekday: slot.Weekday, period: slot.Period}
		if seen[pos] {
			return fmt.Errorf("%w: slot %d: duplicate position %s period %d", domain.ErrInvalidInput, i+1, slot.Weekday, slot.Period)
		}
		seen[pos] = true
	}

	return nil
}

func parseClock(clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed clock time %q", domain.ErrInvalidInput, clock)
	}
	return t, nil
}
