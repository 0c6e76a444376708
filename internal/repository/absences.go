package repository

import (
	"context"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

func (r *Repository) GetAbsenceByID(id int64) (*domain.Absence, error) {
	query := `
		SELECT teacher_id, start_date, end_date, kind, time_windowed, entry_time, exit_time, justified, note, created_at, version
		FROM absences WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	absence := &domain.Absence{
		ID: id,
	}

	dst := []any{
		&absence.TeacherID,
		&absence.StartDate,
		&absence.EndDate,
		&absence.Kind,
		&absence.TimeWindowed,
		&absence.EntryTime,
		&absence.ExitTime,
		&absence.Justified,
		&absence.Note,
		&absence.CreatedAt,
		&absence.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return absence, nil
}

// GetAbsencesOverlapping returns every absence whose inclusive date range
// intersects [from, to].
func (r *Repository) GetAbsencesOverlapping(from, to time.Time) ([]*domain.Absence, error) {
	query := `
		SELECT id, teacher_id, start_date, end_date, kind, time_windowed, entry_time, exit_time, justified, note, created_at, version
		FROM absences
		WHERE start_date <= $2 AND end_date >= $1
		ORDER BY start_date, teacher_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.TruncateToDay(from), domain.TruncateToDay(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	absences := make([]*domain.Absence, 0)
	for rows.Next() {
		absence := &domain.Absence{}
		dst := []any{
			&absence.ID,
			&absence.TeacherID,
			&absence.StartDate,
			&absence.EndDate,
			&absence.Kind,
			&absence.TimeWindowed,
			&absence.EntryTime,
			&absence.ExitTime,
			&absence.Justified,
			&absence.Note,
			&absence.CreatedAt,
			&absence.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		absences = append(absences, absence)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return absences, nil
}

func (r *Repository) GetAbsencesOverlappingForTeacher(teacherID int64, from, to time.Time) ([]*domain.Absence, error) {
	query := `
		SELECT id, teacher_id, start_date, end_date, kind, time_windowed, entry_time, exit_time, justified, note, created_at, version
		FROM absences
		WHERE teacher_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, teacherID, domain.TruncateToDay(from), domain.TruncateToDay(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	absences := make([]*domain.Absence, 0)
	for rows.Next() {
		absence := &domain.Absence{}
		dst := []any{
			&absence.ID,
			&absence.TeacherID,
			&absence.StartDate,
			&absence.EndDate,
			&absence.Kind,
			&absence.TimeWindowed,
			&absence.EntryTime,
			&absence.ExitTime,
			&absence.Justified,
			&absence.Note,
			&absence.CreatedAt,
			&absence.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		absences = append(absences, absence)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return absences, nil
}

func (r *Repository) CreateAbsence(absence *domain.Absence) error {
	query := `
		INSERT INTO absences (teacher_id, start_date, end_date, kind, time_windowed, entry_time, exit_time, justified, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		absence.TeacherID,
		domain.TruncateToDay(absence.StartDate),
		domain.TruncateToDay(absence.EndDate),
		absence.Kind,
		absence.TimeWindowed,
		absence.EntryTime,
		absence.ExitTime,
		absence.Justified,
		absence.Note,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&absence.ID, &absence.CreatedAt, &absence.Version); err != nil {
		return err
	}

	return nil
}

// DeleteAbsence removes an absence together with its dependent assignments.
// The cascade runs in one transaction so a failure leaves both tables intact.
func (r *Repository) DeleteAbsence(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM assignments WHERE absence_id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	query = `DELETE FROM absences WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
