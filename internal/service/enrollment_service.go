package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/plataform/plataform-api/internal/dto"
	"github.com/plataform/plataform-api/internal/models"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
)

type enrollmentRepo interface {
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentSummary, error)
	AdvanceProgress(ctx context.Context, id string, completedWeeks int, completed bool) error
}

type enrollmentCourseReader interface {
	FindByIDAndTeacher(ctx context.Context, id, teacherID string) (*models.Course, error)
}

// EnrollmentService serves the student-facing course surface and
// teacher-driven progression updates.
type EnrollmentService struct {
	enrollments enrollmentRepo
	courses     enrollmentCourseReader
	detail      *CourseService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService. The course
// service is reused for assembling the full course tree.
func NewEnrollmentService(enrollments enrollmentRepo, courses enrollmentCourseReader, detail *CourseService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		detail:      detail,
		validator:   validate,
		logger:      logger,
	}
}

// ListForStudent returns the caller's enrollments with course summary
// and a coarse completed/in_progress status.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID string) ([]dto.StudentCourseItem, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	items := make([]dto.StudentCourseItem, 0, len(enrollments))
	for _, enrollment := range enrollments {
		status := "in_progress"
		if enrollment.Completed {
			status = "completed"
		}
		items = append(items, dto.StudentCourseItem{
			ID:          enrollment.CourseID,
			Title:       enrollment.CourseTitle,
			Description: enrollment.CourseDescription,
			Duration:    enrollment.CourseDuration,
			Level:       enrollment.CourseLevel,
			Status:      status,
		})
	}
	return items, nil
}

// DetailForStudent returns the full course tree with per-block status
// derived from the caller's enrollment. A student without an enrollment
// for the course gets NOT_FOUND rather than a fully locked view of a
// course they cannot access.
func (s *EnrollmentService) DetailForStudent(ctx context.Context, studentID, courseID string) (*dto.CourseDetail, error) {
	enrollment, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	course, err := s.detail.courses.FindByID(ctx, enrollment.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	return s.detail.buildDetail(ctx, course, enrollment)
}

// AdvanceProgress lets the owning teacher raise a student's progression
// cursor. The cursor is monotonic: a value below the current one is a
// no-op. Reaching the course duration completes the enrollment and
// stamps completed_at exactly once.
func (s *EnrollmentService) AdvanceProgress(ctx context.Context, teacherID, courseID, studentID string, req models.UpdateProgressRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}

	course, err := s.courses.FindByIDAndTeacher(ctx, courseID, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	enrollment, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, course.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	completed := req.CompletedWeeks >= course.Duration
	if err := s.enrollments.AdvanceProgress(ctx, enrollment.ID, req.CompletedWeeks, completed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}

	updated, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload enrollment")
	}

	s.logger.Info("progress advanced",
		zap.String("enrollment_id", updated.ID),
		zap.Int("completed_weeks", updated.CompletedWeeks),
		zap.Bool("completed", updated.Completed),
	)
	return updated, nil
}
