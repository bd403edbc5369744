package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursescheduler/internal/domain"
)

type parentRepository struct {
	DB *sql.DB
}

func NewParentRepository(db *sql.DB) domain.ParentRepository {
	return &parentRepository{
		DB: db,
	}
}

func (r *parentRepository) Get(ctx context.Context, ref domain.ParentRef) (*domain.Parent, error) {
	switch ref.Kind {
	case domain.ParentCourseInstance:
		return r.getCourseInstance(ctx, ref)
	case domain.ParentNonClassEvent:
		return r.getNonClassEvent(ctx, ref)
	}
	return nil, fmt.Errorf("unknown parent kind %q", ref.Kind)
}

func (r *parentRepository) getCourseInstance(ctx context.Context, ref domain.ParentRef) (*domain.Parent, error) {
	query := `
		SELECT c.prefix || ' ' || c.number, ci.term, ci.academic_year, ci.retired
		FROM course_instances ci
		JOIN courses c ON c.id = ci.course_id
		WHERE ci.id = $1
	`
	p := &domain.Parent{Ref: ref}
	var term string
	err := r.DB.QueryRowContext(ctx, query, ref.ID).Scan(&p.Title, &term, &p.AcademicYear, &p.Retired)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Term = domain.Term(term)
	return p, nil
}

func (r *parentRepository) getNonClassEvent(ctx context.Context, ref domain.ParentRef) (*domain.Parent, error) {
	query := `
		SELECT title, term, academic_year
		FROM non_class_events
		WHERE id = $1
	`
	p := &domain.Parent{Ref: ref}
	var term string
	err := r.DB.QueryRowContext(ctx, query, ref.ID).Scan(&p.Title, &term, &p.AcademicYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Term = domain.Term(term)
	return p, nil
}
