package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/plataform/plataform-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, student_id, course_id, completed, completed_at, completed_weeks, merit_points, enrolled_at`

// FindByStudentAndCourse returns the enrollment for a (student, course)
// pair. sql.ErrNoRows means the student is not enrolled.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE student_id = $1 AND course_id = $2 LIMIT 1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// FindByID returns an enrollment by its identifier.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1 LIMIT 1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment by id: %w", err)
	}
	return &enrollment, nil
}

// ListByStudent returns the student's enrollments with course summary
// fields joined in.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentSummary, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.completed, e.completed_at, e.completed_weeks, e.merit_points, e.enrolled_at,
        c.title AS course_title, c.description AS course_description, c.duration AS course_duration, c.level AS course_level
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1
        ORDER BY e.enrolled_at DESC`
	var enrollments []models.EnrollmentSummary
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListStudentsByCourse returns the enrolled students of a course with
// their completion summary for the teacher view.
func (r *EnrollmentRepository) ListStudentsByCourse(ctx context.Context, courseID string) ([]models.EnrolledStudent, error) {
	const query = `SELECT e.student_id, u.username AS student_name, e.completed, e.merit_points
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        WHERE e.course_id = $1
        ORDER BY u.username ASC`
	var students []models.EnrolledStudent
	if err := r.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return students, nil
}

// Create persists a new enrollment. The unique (student_id, course_id)
// constraint rejects duplicates.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, completed, completed_at, completed_weeks, merit_points, enrolled_at)
        VALUES (:id, :student_id, :course_id, :completed, :completed_at, :completed_weeks, :merit_points, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// AdvanceProgress raises completed_weeks to the given value. GREATEST
// keeps the cursor monotonic even under concurrent updates, and
// completed_at is set exactly once when the course completes.
func (r *EnrollmentRepository) AdvanceProgress(ctx context.Context, id string, completedWeeks int, completed bool) error {
	const query = `UPDATE enrollments
        SET completed_weeks = GREATEST(completed_weeks, $2),
            completed = completed OR $3,
            completed_at = CASE WHEN $3 AND completed_at IS NULL THEN $4 ELSE completed_at END
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, completedWeeks, completed, time.Now().UTC()); err != nil {
		return fmt.Errorf("advance enrollment progress: %w", err)
	}
	return nil
}
