package domain

import "time"

type AssignmentStatus string

const (
	AssignmentScheduled AssignmentStatus = "scheduled"
	AssignmentConfirmed AssignmentStatus = "confirmed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// Assignment records a substitute covering one period of an absent teacher's
// timetable. An assignment is never overwritten in place: re-assigning a slot
// means cancelling the old record and inserting a new one.
type Assignment struct {
	ID           int64            `json:"id"`
	AbsenceID    int64            `json:"absenceID"`
	TeacherID    int64            `json:"teacherID"` // the absent teacher
	SubstituteID int64            `json:"substituteID"`
	Date         time.Time        `json:"date"`
	Period       int32            `json:"period"`
	ClassLabel   string           `json:"classLabel"`
	SubjectID    *int64           `json:"subjectID"`
	Status       AssignmentStatus `json:"status"`
	Note         string           `json:"note"`
	CreatedAt    time.Time        `json:"createdAt"`
	Version      int32            `json:"-"`
}

// IsActive reports whether the assignment still claims its slot. Only a
// cancelled assignment frees the (teacher, date, period) key.
func (a *Assignment) IsActive() bool {
	return a.Status != AssignmentCancelled
}

// CanTransitionTo enforces the scheduled→confirmed and
// scheduled/confirmed→cancelled state machine.
func (a *Assignment) CanTransitionTo(next AssignmentStatus) bool {
	switch next {
	case AssignmentConfirmed:
		return a.Status == AssignmentScheduled
	case AssignmentCancelled:
		return a.Status == AssignmentScheduled || a.Status == AssignmentConfirmed
	default:
		return false
	}
}
