package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/plataform/plataform-api/internal/models"
)

// GradeRepository handles persistence of module grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// EnsureForEnrollment materializes one ungraded ModuleGrade per course
// module of the enrollment. The single INSERT ... SELECT with ON
// CONFLICT DO NOTHING makes concurrent backfills for the same
// enrollment race-free: losers of the unique constraint are a no-op,
// never an error.
func (r *GradeRepository) EnsureForEnrollment(ctx context.Context, enrollmentID string) error {
	const query = `INSERT INTO module_grades (id, enrollment_id, module_id, grade)
        SELECT gen_random_uuid(), e.id, m.id, 0
        FROM enrollments e
        JOIN modules m ON m.course_id = e.course_id
        WHERE e.id = $1
        ON CONFLICT (enrollment_id, module_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, enrollmentID); err != nil {
		return fmt.Errorf("ensure module grades: %w", err)
	}
	return nil
}

// ListByEnrollment returns the enrollment's grades joined with the
// module number, ordered by module.
func (r *GradeRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.ModuleGradeEntry, error) {
	const query = `SELECT m.number AS module_number, g.grade
        FROM module_grades g
        JOIN modules m ON m.id = g.module_id
        WHERE g.enrollment_id = $1
        ORDER BY m.number ASC`
	var grades []models.ModuleGradeEntry
	if err := r.db.SelectContext(ctx, &grades, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list enrollment grades: %w", err)
	}
	return grades, nil
}

// FindModuleCourse returns the course a module belongs to.
func (r *GradeRepository) FindModuleCourse(ctx context.Context, moduleID string) (string, error) {
	const query = `SELECT course_id FROM modules WHERE id = $1 LIMIT 1`
	var courseID string
	if err := r.db.GetContext(ctx, &courseID, query, moduleID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("find module course: %w", err)
	}
	return courseID, nil
}

// SetGrade upserts the grade value for the (enrollment, module) pair.
// Range validation happens in the service; the upsert keeps the
// uniqueness invariant under the same create-if-absent contract as the
// backfill.
func (r *GradeRepository) SetGrade(ctx context.Context, enrollmentID, moduleID string, grade int) error {
	const query = `INSERT INTO module_grades (id, enrollment_id, module_id, grade)
        VALUES (gen_random_uuid(), $1, $2, $3)
        ON CONFLICT (enrollment_id, module_id) DO UPDATE SET grade = EXCLUDED.grade`
	if _, err := r.db.ExecContext(ctx, query, enrollmentID, moduleID, grade); err != nil {
		return fmt.Errorf("set module grade: %w", err)
	}
	return nil
}
