package repository

import (
	"context"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

func (r *Repository) GetAllClasses() ([]*domain.Class, error) {
	query := `
		SELECT id, year, section, track FROM classes ORDER BY year, section
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]*domain.Class, 0)
	for rows.Next() {
		class := &domain.Class{}
		if err := rows.Scan(&class.ID, &class.Year, &class.Section, &class.Track); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *Repository) GetClassByID(id int64) (*domain.Class, error) {
	query := `
		SELECT year, section, track FROM classes WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	class := &domain.Class{
		ID: id,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&class.Year, &class.Section, &class.Track); err != nil {
		return nil, err
	}

	return class, nil
}

func (r *Repository) CreateClass(class *domain.Class) error {
	query := `
		INSERT INTO classes (year, section, track)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, class.Year, class.Section, class.Track).Scan(&class.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteClass(id int64) error {
	query := `
		DELETE FROM classes WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllSubjects() ([]*domain.Subject, error) {
	query := `
		SELECT id, code, description FROM subjects ORDER BY code
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make([]*domain.Subject, 0)
	for rows.Next() {
		subject := &domain.Subject{}
		if err := rows.Scan(&subject.ID, &subject.Code, &subject.Description); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

func (r *Repository) GetSubjectByID(id int64) (*domain.Subject, error) {
	query := `
		SELECT code, description FROM subjects WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	subject := &domain.Subject{
		ID: id,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&subject.Code, &subject.Description); err != nil {
		return nil, err
	}

	return subject, nil
}

func (r *Repository) CreateSubject(subject *domain.Subject) error {
	query := `
		INSERT INTO subjects (code, description)
		VALUES ($1, $2)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, subject.Code, subject.Description).Scan(&subject.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSubject(id int64) error {
	query := `
		DELETE FROM subjects WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
