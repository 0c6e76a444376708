package repository

import (
	"context"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

func (r *Repository) GetAssignmentByID(id int64) (*domain.Assignment, error) {
	query := `
		SELECT absence_id, teacher_id, substitute_id, date, period, class_label, subject_id, status, note, created_at, version
		FROM assignments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	assignment := &domain.Assignment{
		ID: id,
	}

	dst := []any{
		&assignment.AbsenceID,
		&assignment.TeacherID,
		&assignment.SubstituteID,
		&assignment.Date,
		&assignment.Period,
		&assignment.ClassLabel,
		&assignment.SubjectID,
		&assignment.Status,
		&assignment.Note,
		&assignment.CreatedAt,
		&assignment.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return assignment, nil
}

// GetActiveAssignmentByKey looks up the non-cancelled assignment claiming
// (absent teacher, date, period). At most one can exist thanks to the
// partial unique index, and the latest record wins the ORDER BY as a
// safeguard against historical duplicates.
func (r *Repository) GetActiveAssignmentByKey(teacherID int64, date time.Time, period int32) (*domain.Assignment, error) {
	query := `
		SELECT id, absence_id, substitute_id, class_label, subject_id, status, note, created_at, version
		FROM assignments
		WHERE teacher_id = $1 AND date = $2 AND period = $3 AND status <> 'cancelled'
		ORDER BY created_at DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	assignment := &domain.Assignment{
		TeacherID: teacherID,
		Date:      domain.TruncateToDay(date),
		Period:    period,
	}

	dst := []any{
		&assignment.ID,
		&assignment.AbsenceID,
		&assignment.SubstituteID,
		&assignment.ClassLabel,
		&assignment.SubjectID,
		&assignment.Status,
		&assignment.Note,
		&assignment.CreatedAt,
		&assignment.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, teacherID, domain.TruncateToDay(date), period).Scan(dst...); err != nil {
		return nil, err
	}

	return assignment, nil
}

// HasActiveAssignmentForSubstitute reports whether the substitute is already
// booked at (date, period) by any non-cancelled assignment.
func (r *Repository) HasActiveAssignmentForSubstitute(substituteID int64, date time.Time, period int32) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM assignments
			WHERE substitute_id = $1 AND date = $2 AND period = $3 AND status <> 'cancelled'
		)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	exists := false
	if err := r.dbpool.QueryRowContext(ctx, query, substituteID, domain.TruncateToDay(date), period).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) GetAssignmentsByRange(from, to time.Time) ([]*domain.Assignment, error) {
	query := `
		SELECT id, absence_id, teacher_id, substitute_id, date, period, class_label, subject_id, status, note, created_at, version
		FROM assignments
		WHERE date >= $1 AND date <= $2
		ORDER BY date, period
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.TruncateToDay(from), domain.TruncateToDay(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.Assignment, 0)
	for rows.Next() {
		assignment := &domain.Assignment{}
		dst := []any{
			&assignment.ID,
			&assignment.AbsenceID,
			&assignment.TeacherID,
			&assignment.SubstituteID,
			&assignment.Date,
			&assignment.Period,
			&assignment.ClassLabel,
			&assignment.SubjectID,
			&assignment.Status,
			&assignment.Note,
			&assignment.CreatedAt,
			&assignment.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// InsertAssignment persists a new substitution record. The partial unique
// indexes assignments_active_key and assignments_substitute_key are the
// authoritative double-booking guard; violations surface as pgconn.PgError
// for the caller to map.
func (r *Repository) InsertAssignment(assignment *domain.Assignment) error {
	query := `
		INSERT INTO assignments (absence_id, teacher_id, substitute_id, date, period, class_label, subject_id, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		assignment.AbsenceID,
		assignment.TeacherID,
		assignment.SubstituteID,
		domain.TruncateToDay(assignment.Date),
		assignment.Period,
		assignment.ClassLabel,
		assignment.SubjectID,
		assignment.Status,
		assignment.Note,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateAssignmentStatus(assignment *domain.Assignment) error {
	query := `
		UPDATE assignments
		SET status = $1, note = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{assignment.Status, assignment.Note, assignment.ID, assignment.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&assignment.Version); err != nil {
		return err
	}

	return nil
}

// GetActiveSubstituteIDs returns the teachers already booked as substitutes
// at (date, period) by any non-cancelled assignment.
func (r *Repository) GetActiveSubstituteIDs(date time.Time, period int32) ([]int64, error) {
	query := `
		SELECT DISTINCT substitute_id FROM assignments
		WHERE date = $1 AND period = $2 AND status <> 'cancelled'
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.TruncateToDay(date), period)
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
