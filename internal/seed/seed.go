// Package seed fills a development database with plausible school data.
package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/coverage"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/repository"
)

var subjects = []domain.Subject{
	{Code: "A11", Description: "Italiano"},
	{Code: "A12", Description: "Matematica"},
	{Code: "A13", Description: "Inglese"},
	{Code: "A19", Description: "Storia e Filosofia"},
	{Code: "A27", Description: "Fisica"},
	{Code: "A50", Description: "Scienze Naturali"},
	{Code: "A41", Description: "Informatica"},
	{Code: "A48", Description: "Scienze Motorie"},
	{Code: "AB24", Description: "Disegno e Storia dell'Arte"},
}

var tracks = []*string{nil, strptr("Scienze Applicate")}

func strptr(s string) *string {
	return &s
}

// SeedCatalog inserts the subject and class registry. Duplicate rows are
// skipped so the function can run more than once.
func SeedCatalog(repo *repository.Repository) {
	cnt := 0
	for _, s := range subjects {
		subject := s
		if err := repo.CreateSubject(&subject); err != nil {
			slog.Warn("failed to insert subject", slog.String("code", s.Code), slog.String("error", err.Error()))
			continue
		}
		cnt++
	}
	slog.Info("subjects inserted", slog.Int("count", cnt))

	cnt = 0
	for year := int32(1); year <= 5; year++ {
		for _, section := range []string{"A", "B"} {
			class := &domain.Class{
				Year:    year,
				Section: section,
				Track:   tracks[rand.Intn(len(tracks))],
			}
			if err := repo.CreateClass(class); err != nil {
				slog.Warn("failed to insert class", slog.String("label", class.Label()), slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
	}
	slog.Info("classes inserted", slog.Int("count", cnt))
}

// SeedTimetables replaces every active teacher's weekly grid with a random
// one: around eighteen lesson periods plus a couple of standby slots.
func SeedTimetables(repo *repository.Repository, bell *coverage.BellSchedule) {
	teachers, err := repo.GetActiveTeachers()
	if err != nil {
		slog.Error("failed to load teachers", slog.String("error", err.Error()))
		return
	}
	classes, err := repo.GetAllClasses()
	if err != nil {
		slog.Error("failed to load classes", slog.String("error", err.Error()))
		return
	}
	allSubjects, err := repo.GetAllSubjects()
	if err != nil {
		slog.Error("failed to load subjects", slog.String("error", err.Error()))
		return
	}
	if len(classes) == 0 || len(allSubjects) == 0 {
		slog.Error("seed the catalog before the timetables")
		return
	}

	cnt := 0
	for _, teacher := range teachers {
		subject := allSubjects[rand.Intn(len(allSubjects))]
		slots := make([]*domain.LessonSlot, 0)

		for _, weekday := range domain.Weekdays {
			// three random periods of lessons per day, one standby slot on
			// two days of the week
			periods := rand.Perm(int(bell.MaxPeriod()))[:3]
			for i, p := range periods {
				period := int32(p + 1)
				window, err := bell.Window(period)
				if err != nil {
					continue
				}

				slot := &domain.LessonSlot{
					TeacherID: teacher.ID,
					Weekday:   weekday,
					Period:    period,
					StartTime: coverage.MinutesToClock(window.Start),
					EndTime:   coverage.MinutesToClock(window.End),
				}
				if i == 0 && rand.Intn(3) == 0 {
					slot.Kind = domain.SlotKindStandby
				} else {
					class := classes[rand.Intn(len(classes))]
					slot.Kind = domain.SlotKindLesson
					slot.ClassID = &class.ID
					slot.SubjectID = &subject.ID
				}
				slots = append(slots, slot)
			}
		}

		if err := repo.ReplaceTeacherSlots(teacher.ID, slots); err != nil {
			slog.Warn("failed to replace timetable", slog.Int64("teacherID", teacher.ID), slog.String("error", err.Error()))
			continue
		}
		cnt++
	}
	slog.Info("timetables seeded", slog.Int("count", cnt))
}

var absenceNotes = []string{
	"", "", "visita medica", "corso di aggiornamento", "motivi di famiglia",
}

// SeedAbsences records n random absences over the next two weeks.
func SeedAbsences(repo *repository.Repository, n int) {
	teachers, err := repo.GetActiveTeachers()
	if err != nil {
		slog.Error("failed to load teachers", slog.String("error", err.Error()))
		return
	}
	if len(teachers) == 0 {
		slog.Error("seed some teachers before the absences")
		return
	}

	today := domain.TruncateToDay(time.Now())

	cnt := 0
	for i := 0; i < n; i++ {
		teacher := teachers[rand.Intn(len(teachers))]
		start := today.AddDate(0, 0, rand.Intn(14))
		absence := &domain.Absence{
			TeacherID: teacher.ID,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, rand.Intn(3)),
			Kind:      domain.AbsenceKinds[rand.Intn(len(domain.AbsenceKinds))],
			Justified: rand.Intn(2) == 0,
			Note:      absenceNotes[rand.Intn(len(absenceNotes))],
		}

		if err := repo.CreateAbsence(absence); err != nil {
			slog.Warn("failed to insert absence", slog.String("error", err.Error()))
			continue
		}
		cnt++
	}
	slog.Info("absences seeded", slog.Int("count", cnt))
}
