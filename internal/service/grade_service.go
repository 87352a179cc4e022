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

type gradeRepo interface {
	EnsureForEnrollment(ctx context.Context, enrollmentID string) error
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.ModuleGradeEntry, error)
	FindModuleCourse(ctx context.Context, moduleID string) (string, error)
	SetGrade(ctx context.Context, enrollmentID, moduleID string, grade int) error
}

type gradeEnrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentSummary, error)
}

// GradeService owns the grading ledger: lazy backfill of ungraded
// entries and bounded grade assignment.
type GradeService struct {
	grades      gradeRepo
	enrollments gradeEnrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(grades gradeRepo, enrollments gradeEnrollmentReader, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, enrollments: enrollments, validator: validate, logger: logger}
}

// StudentGrades backfills and returns the per-module grades for every
// enrollment of the student. The backfill is idempotent: each course
// module ends up with exactly one entry no matter how many concurrent
// reads race.
func (s *GradeService) StudentGrades(ctx context.Context, studentID string) ([]dto.EnrollmentGrades, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	result := make([]dto.EnrollmentGrades, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if err := s.grades.EnsureForEnrollment(ctx, enrollment.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to backfill grades")
		}
		entries, err := s.grades.ListByEnrollment(ctx, enrollment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
		}
		result = append(result, dto.EnrollmentGrades{
			CourseID:    enrollment.CourseID,
			CourseTitle: enrollment.CourseTitle,
			Completed:   enrollment.Completed,
			Modules:     entries,
		})
	}
	return result, nil
}

// SetGrade assigns a grade to one module of an enrollment. The value
// must be within [1,5] and the module must belong to the enrollment's
// course; both are checked before any write.
func (s *GradeService) SetGrade(ctx context.Context, req models.SetGradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if req.Grade < models.GradeMin || req.Grade > models.GradeMax {
		return appErrors.ErrInvalidGrade
	}

	enrollment, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	courseID, err := s.grades.FindModuleCourse(ctx, req.ModuleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrModuleNotInCourse
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	if courseID != enrollment.CourseID {
		return appErrors.ErrModuleNotInCourse
	}

	if err := s.grades.SetGrade(ctx, enrollment.ID, req.ModuleID, req.Grade); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set grade")
	}
	return nil
}
