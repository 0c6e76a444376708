package domain

import (
	"fmt"
	"time"
)

type AbsenceKind string

const (
	AbsenceKindIllness  AbsenceKind = "illness"
	AbsenceKindLeave    AbsenceKind = "leave"
	AbsenceKindVacation AbsenceKind = "vacation"
	AbsenceKindFamily   AbsenceKind = "family"
	AbsenceKindTraining AbsenceKind = "training"
	AbsenceKindOther    AbsenceKind = "other"
)

var AbsenceKinds = []AbsenceKind{
	AbsenceKindIllness,
	AbsenceKindLeave,
	AbsenceKindVacation,
	AbsenceKindFamily,
	AbsenceKindTraining,
	AbsenceKindOther,
}

// Absence records a teacher's unavailability over an inclusive date range.
// StartDate is normalized to 00:00:00 and EndDate covers the whole end day.
// A time-windowed absence narrows the unavailability to the clock interval
// [EntryTime, ExitTime) on every day of the range.
type Absence struct {
	ID           int64       `json:"id"`
	TeacherID    int64       `json:"teacherID"`
	StartDate    time.Time   `json:"startDate"`
	EndDate      time.Time   `json:"endDate"`
	Kind         AbsenceKind `json:"kind"`
	TimeWindowed bool        `json:"timeWindowed"`
	EntryTime    *string     `json:"entryTime"` // "HH:MM", set when TimeWindowed
	ExitTime     *string     `json:"exitTime"`  // "HH:MM", set when TimeWindowed
	Justified    bool        `json:"justified"`
	Note         string      `json:"note"`
	CreatedAt    time.Time   `json:"createdAt"`
	Version      int32       `json:"-"`
}

func ParseAbsenceKind(s string) (AbsenceKind, error) {
	for _, k := range AbsenceKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown absence kind %q", ErrInvalidInput, s)
}

// TruncateToDay drops the clock component, keeping the calendar day in the
// location of t.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CoversDate reports whether the absence range includes the given calendar
// day. Boundary days count: the range is inclusive on both ends.
func (a *Absence) CoversDate(date time.Time) bool {
	day := TruncateToDay(date)
	return !day.Before(TruncateToDay(a.StartDate)) && !day.After(TruncateToDay(a.EndDate))
}
