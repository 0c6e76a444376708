// Package coverage computes which lesson periods are left vacant by teacher
// absences and which colleagues can step in to cover them.
package coverage

import (
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

// Gap is one concrete lesson period requiring substitute coverage. The
// display fields are denormalized so the caller can render the gap list
// without further lookups.
type Gap struct {
	AbsenceID  int64          `json:"absenceID"`
	TeacherID  int64          `json:"teacherID"`
	Date       time.Time      `json:"date"`
	Weekday    domain.Weekday `json:"weekday"`
	Period     int32          `json:"period"`
	SubjectID  *int64         `json:"subjectID"`
	Subject    string         `json:"subject"`
	ClassLabel string         `json:"classLabel"`
	Room       string         `json:"room"`
}

// Candidate is a teacher eligible to cover a gap, ranked by the caller-facing
// priority rules. Standby candidates are flagged for display.
type Candidate struct {
	*domain.Teacher
	IsStandby bool `json:"isStandby"`
}

type TeacherStore interface {
	GetActiveTeachers() ([]*domain.Teacher, error)
	GetTeacherByID(id int64) (*domain.Teacher, error)
	AdjustRecoverableHours(id int64, delta int32) (int32, error)
}

type TimetableStore interface {
	GetSlotsByTeacher(teacherID int64, excludeStandby bool) ([]*domain.LessonSlot, error)
	GetSlotsByWeekdayAndPeriod(weekday domain.Weekday, period int32, standbyOnly bool) ([]*domain.LessonSlot, error)
	GetTeacherIDsByClass(classID int64) ([]int64, error)
}

type AbsenceStore interface {
	GetAbsenceByID(id int64) (*domain.Absence, error)
	GetAbsencesOverlapping(from, to time.Time) ([]*domain.Absence, error)
}

type AssignmentStore interface {
	GetActiveAssignmentByKey(teacherID int64, date time.Time, period int32) (*domain.Assignment, error)
	GetActiveSubstituteIDs(date time.Time, period int32) ([]int64, error)
	HasActiveAssignmentForSubstitute(substituteID int64, date time.Time, period int32) (bool, error)
	InsertAssignment(assignment *domain.Assignment) error
}

type CatalogStore interface {
	GetClassByID(id int64) (*domain.Class, error)
	GetAllClasses() ([]*domain.Class, error)
	GetSubjectByID(id int64) (*domain.Subject, error)
}

// Stores bundles the persistence collaborators the coverage computations read
// from. *repository.Repository satisfies every interface.
type Stores struct {
	Teachers    TeacherStore
	Timetable   TimetableStore
	Absences    AbsenceStore
	Assignments AssignmentStore
	Catalog     CatalogStore
}
