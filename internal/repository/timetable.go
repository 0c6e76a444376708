package repository

import (
	"context"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

// GetSlotsByTeacher returns the teacher's weekly timetable. With
// excludeStandby set, only real lessons are returned.
func (r *Repository) GetSlotsByTeacher(teacherID int64, excludeStandby bool) ([]*domain.LessonSlot, error) {
	query := `
		SELECT id, teacher_id, subject_id, class_id, weekday, period, start_time, end_time, room, kind
		FROM lesson_slots
		WHERE teacher_id = $1 AND ($2 = FALSE OR kind <> 'standby')
		ORDER BY weekday, period
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, teacherID, excludeStandby)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]*domain.LessonSlot, 0)
	for rows.Next() {
		slot := &domain.LessonSlot{}
		dst := []any{
			&slot.ID,
			&slot.TeacherID,
			&slot.SubjectID,
			&slot.ClassID,
			&slot.Weekday,
			&slot.Period,
			&slot.StartTime,
			&slot.EndTime,
			&slot.Room,
			&slot.Kind,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

// GetSlotsByWeekdayAndPeriod returns every slot at a weekly position. With
// standbyOnly set, only standby slots are returned.
func (r *Repository) GetSlotsByWeekdayAndPeriod(weekday domain.Weekday, period int32, standbyOnly bool) ([]*domain.LessonSlot, error) {
	query := `
		SELECT id, teacher_id, subject_id, class_id, weekday, period, start_time, end_time, room, kind
		FROM lesson_slots
		WHERE weekday = $1 AND period = $2 AND ($3 = FALSE OR kind = 'standby')
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, weekday, period, standbyOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]*domain.LessonSlot, 0)
	for rows.Next() {
		slot := &domain.LessonSlot{}
		dst := []any{
			&slot.ID,
			&slot.TeacherID,
			&slot.SubjectID,
			&slot.ClassID,
			&slot.Weekday,
			&slot.Period,
			&slot.StartTime,
			&slot.EndTime,
			&slot.Room,
			&slot.Kind,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

// ReplaceTeacherSlots deletes and recreates the teacher's whole timetable in
// one transaction. Slots are immutable outside of re-import.
func (r *Repository) ReplaceTeacherSlots(teacherID int64, slots []*domain.LessonSlot) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM lesson_slots WHERE teacher_id = $1`
	if _, err := tx.ExecContext(ctx, query, teacherID); err != nil {
		return err
	}

	query = `
		INSERT INTO lesson_slots (teacher_id, subject_id, class_id, weekday, period, start_time, end_time, room, kind)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	for _, slot := range slots {
		slot.TeacherID = teacherID
		args := []any{
			slot.TeacherID,
			slot.SubjectID,
			slot.ClassID,
			slot.Weekday,
			slot.Period,
			slot.StartTime,
			slot.EndTime,
			slot.Room,
			slot.Kind,
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&slot.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetTeacherIDsByClass returns the teachers with at least one lesson in the
// given class, used for the same-class affinity ranking rule.
func (r *Repository) GetTeacherIDsByClass(classID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT teacher_id FROM lesson_slots
		WHERE class_id = $1 AND kind = 'lesson'
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
