package coverage

import (
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

// fakeStores is an in-memory implementation of every store interface. Its
// assignment insert emulates the partial unique indexes so conflict handling
// can be exercised without a database.
type fakeStores struct {
	teachers    map[int64]*domain.Teacher
	slots       []*domain.LessonSlot
	absences    map[int64]*domain.Absence
	assignments []*domain.Assignment
	classes     map[int64]*domain.Class
	subjects    map[int64]*domain.Subject

	nextAssignmentID int64
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		teachers:         make(map[int64]*domain.Teacher),
		absences:         make(map[int64]*domain.Absence),
		classes:          make(map[int64]*domain.Class),
		subjects:         make(map[int64]*domain.Subject),
		nextAssignmentID: 1,
	}
}

func (f *fakeStores) stores() Stores {
	return Stores{
		Teachers:    f,
		Timetable:   f,
		Absences:    f,
		Assignments: f,
		Catalog:     f,
	}
}

func (f *fakeStores) addTeacher(id int64, firstName, lastName string, recoverableHours int32) *domain.Teacher {
	teacher := &domain.Teacher{
		ID:               id,
		FirstName:        firstName,
		LastName:         lastName,
		Role:             domain.RoleTeacher,
		IsActive:         true,
		RecoverableHours: recoverableHours,
	}
	f.teachers[id] = teacher
	return teacher
}

func (f *fakeStores) addLesson(teacherID int64, weekday domain.Weekday, period int32, classID, subjectID *int64) *domain.LessonSlot {
	slot := &domain.LessonSlot{
		ID:        int64(len(f.slots) + 1),
		TeacherID: teacherID,
		ClassID:   classID,
		SubjectID: subjectID,
		Weekday:   weekday,
		Period:    period,
		Kind:      domain.SlotKindLesson,
	}
	f.slots = append(f.slots, slot)
	return slot
}

func (f *fakeStores) addStandby(teacherID int64, weekday domain.Weekday, period int32) *domain.LessonSlot {
	slot := &domain.LessonSlot{
		ID:        int64(len(f.slots) + 1),
		TeacherID: teacherID,
		Weekday:   weekday,
		Period:    period,
		Kind:      domain.SlotKindStandby,
	}
	f.slots = append(f.slots, slot)
	return slot
}

func (f *fakeStores) addAbsence(id, teacherID int64, start, end time.Time) *domain.Absence {
	absence := &domain.Absence{
		ID:        id,
		TeacherID: teacherID,
		StartDate: domain.TruncateToDay(start),
		EndDate:   domain.TruncateToDay(end),
		Kind:      domain.AbsenceKindIllness,
	}
	f.absences[id] = absence
	return absence
}

func (f *fakeStores) addWindowedAbsence(id, teacherID int64, day time.Time, entry, exit string) *domain.Absence {
	absence := f.addAbsence(id, teacherID, day, day)
	absence.TimeWindowed = true
	absence.EntryTime = &entry
	absence.ExitTime = &exit
	return absence
}

// TeacherStore

func (f *fakeStores) GetActiveTeachers() ([]*domain.Teacher, error) {
	teachers := make([]*domain.Teacher, 0, len(f.teachers))
	for _, teacher := range f.teachers {
		if teacher.IsActive {
			teachers = append(teachers, teacher)
		}
	}
	return teachers, nil
}

func (f *fakeStores) GetTeacherByID(id int64) (*domain.Teacher, error) {
	teacher, ok := f.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return teacher, nil
}

func (f *fakeStores) AdjustRecoverableHours(id int64, delta int32) (int32, error) {
	teacher, ok := f.teachers[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	teacher.RecoverableHours += delta
	if teacher.RecoverableHours < 0 {
		teacher.RecoverableHours = 0
	}
	return teacher.RecoverableHours, nil
}

// TimetableStore

func (f *fakeStores) GetSlotsByTeacher(teacherID int64, excludeStandby bool) ([]*domain.LessonSlot, error) {
	slots := make([]*domain.LessonSlot, 0)
	for _, slot := range f.slots {
		if slot.TeacherID != teacherID {
			continue
		}
		if excludeStandby && slot.IsStandby() {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (f *fakeStores) GetSlotsByWeekdayAndPeriod(weekday domain.Weekday, period int32, standbyOnly bool) ([]*domain.LessonSlot, error) {
	slots := make([]*domain.LessonSlot, 0)
	for _, slot := range f.slots {
		if slot.Weekday != weekday || slot.Period != period {
			continue
		}
		if standbyOnly && !slot.IsStandby() {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (f *fakeStores) GetTeacherIDsByClass(classID int64) ([]int64, error) {
	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	for _, slot := range f.slots {
		if slot.Kind != domain.SlotKindLesson || slot.ClassID == nil || *slot.ClassID != classID {
			continue
		}
		if !seen[slot.TeacherID] {
			seen[slot.TeacherID] = true
			ids = append(ids, slot.TeacherID)
		}
	}
	return ids, nil
}

// AbsenceStore

func (f *fakeStores) GetAbsenceByID(id int64) (*domain.Absence, error) {
	absence, ok := f.absences[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return absence, nil
}

func (f *fakeStores) GetAbsencesOverlapping(from, to time.Time) ([]*domain.Absence, error) {
	from = domain.TruncateToDay(from)
	to = domain.TruncateToDay(to)

	absences := make([]*domain.Absence, 0)
	for _, absence := range f.absences {
		if !absence.StartDate.After(to) && !absence.EndDate.Before(from) {
			absences = append(absences, absence)
		}
	}
	return absences, nil
}

// AssignmentStore

func (f *fakeStores) GetActiveAssignmentByKey(teacherID int64, date time.Time, period int32) (*domain.Assignment, error) {
	day := domain.TruncateToDay(date)
	for _, assignment := range f.assignments {
		if assignment.TeacherID == teacherID && assignment.Date.Equal(day) && assignment.Period == period && assignment.IsActive() {
			return assignment, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStores) GetActiveSubstituteIDs(date time.Time, period int32) ([]int64, error) {
	day := domain.TruncateToDay(date)
	ids := make([]int64, 0)
	for _, assignment := range f.assignments {
		if assignment.Date.Equal(day) && assignment.Period == period && assignment.IsActive() {
			ids = append(ids, assignment.SubstituteID)
		}
	}
	return ids, nil
}

func (f *fakeStores) HasActiveAssignmentForSubstitute(substituteID int64, date time.Time, period int32) (bool, error) {
	day := domain.TruncateToDay(date)
	for _, assignment := range f.assignments {
		if assignment.SubstituteID == substituteID && assignment.Date.Equal(day) && assignment.Period == period && assignment.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStores) InsertAssignment(assignment *domain.Assignment) error {
	for _, existing := range f.assignments {
		if !existing.IsActive() || !existing.Date.Equal(assignment.Date) || existing.Period != assignment.Period {
			continue
		}
		if existing.TeacherID == assignment.TeacherID {
			return &pgconn.PgError{Code: "23505", ConstraintName: activeAssignmentConstraint}
		}
		if existing.SubstituteID == assignment.SubstituteID {
			return &pgconn.PgError{Code: "23505", ConstraintName: substituteAssignmentConstraint}
		}
	}

	assignment.ID = f.nextAssignmentID
	f.nextAssignmentID++
	assignment.CreatedAt = time.Now()
	f.assignments = append(f.assignments, assignment)
	return nil
}

// CatalogStore

func (f *fakeStores) GetClassByID(id int64) (*domain.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func (f *fakeStores) GetAllClasses() ([]*domain.Class, error) {
	classes := make([]*domain.Class, 0, len(f.classes))
	for _, class := range f.classes {
		classes = append(classes, class)
	}
	return classes, nil
}

func (f *fakeStores) GetSubjectByID(id int64) (*domain.Subject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}
