package repository

import (
	"context"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

func (r *Repository) GetTeacherByID(id int64) (*domain.Teacher, error) {
	query := `
		SELECT first_name, last_name, tax_code, email, password_hash, role, is_active, recoverable_hours, created_at, version
		FROM teachers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	teacher := &domain.Teacher{
		ID: id,
	}

	dst := []any{
		&teacher.FirstName,
		&teacher.LastName,
		&teacher.TaxCode,
		&teacher.Email,
		&teacher.PasswordHash,
		&teacher.Role,
		&teacher.IsActive,
		&teacher.RecoverableHours,
		&teacher.CreatedAt,
		&teacher.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return teacher, nil
}

func (r *Repository) GetTeacherByTaxCode(taxCode string) (*domain.Teacher, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, role, is_active, recoverable_hours, created_at, version
		FROM teachers WHERE tax_code = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	teacher := &domain.Teacher{
		TaxCode: taxCode,
	}

	dst := []any{
		&teacher.ID,
		&teacher.FirstName,
		&teacher.LastName,
		&teacher.Email,
		&teacher.PasswordHash,
		&teacher.Role,
		&teacher.IsActive,
		&teacher.RecoverableHours,
		&teacher.CreatedAt,
		&teacher.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, taxCode).Scan(dst...); err != nil {
		return nil, err
	}

	return teacher, nil
}

func (r *Repository) GetActiveTeachers() ([]*domain.Teacher, error) {
	query := `
		SELECT id, first_name, last_name, tax_code, email, password_hash, role, is_active, recoverable_hours, created_at, version
		FROM teachers
		WHERE is_active = TRUE
		ORDER BY last_name, first_name
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teachers := make([]*domain.Teacher, 0)
	for rows.Next() {
		teacher := &domain.Teacher{}
		dst := []any{
			&teacher.ID,
			&teacher.FirstName,
			&teacher.LastName,
			&teacher.TaxCode,
			&teacher.Email,
			&teacher.PasswordHash,
			&teacher.Role,
			&teacher.IsActive,
			&teacher.RecoverableHours,
			&teacher.CreatedAt,
			&teacher.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teachers, nil
}

func (r *Repository) CreateTeacher(teacher *domain.Teacher) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO teachers (first_name, last_name, tax_code, email, password_hash, role, recoverable_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, version
	`

	args := []any{teacher.FirstName, teacher.LastName, teacher.TaxCode, teacher.Email, teacher.PasswordHash, teacher.Role, teacher.RecoverableHours}
	dst := []any{&teacher.ID, &teacher.IsActive, &teacher.CreatedAt, &teacher.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateTeacher(teacher *domain.Teacher) error {
	query := `
		UPDATE teachers
		SET
			first_name = $1,
			last_name = $2,
			email = $3,
			password_hash = $4,
			role = $5,
			is_active = $6,
			recoverable_hours = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		teacher.FirstName,
		teacher.LastName,
		teacher.Email,
		teacher.PasswordHash,
		teacher.Role,
		teacher.IsActive,
		teacher.RecoverableHours,
		teacher.ID,
		teacher.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&teacher.Version); err != nil {
		return err
	}

	return nil
}

// AdjustRecoverableHours applies a signed delta to the teacher's balance,
// flooring at zero. The adjustment happens in a single statement so that
// concurrent commits cannot drive the counter negative.
func (r *Repository) AdjustRecoverableHours(id int64, delta int32) (int32, error) {
	query := `
		UPDATE teachers
		SET recoverable_hours = GREATEST(recoverable_hours + $1, 0),
			version = version + 1
		WHERE id = $2
		RETURNING recoverable_hours
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var hours int32
	if err := r.dbpool.QueryRowContext(ctx, query, delta, id).Scan(&hours); err != nil {
		return 0, err
	}

	return hours, nil
}
