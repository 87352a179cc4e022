package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plataform/plataform-api/internal/dto"
	"github.com/plataform/plataform-api/internal/models"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
	"github.com/plataform/plataform-api/pkg/storage"
)

type courseRepo interface {
	CreateWithCurriculum(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByIDAndTeacher(ctx context.Context, id, teacherID string) (*models.Course, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
	ListModules(ctx context.Context, courseID string) ([]models.Module, error)
	ListBlocks(ctx context.Context, moduleID string) ([]models.CourseBlock, error)
	FindBlockByCourseAndWeek(ctx context.Context, courseID string, weekNumber int) (*models.CourseBlock, error)
	ListResources(ctx context.Context, blockID string) ([]models.Resource, error)
	CreateResource(ctx context.Context, resource *models.Resource) error
	FindResource(ctx context.Context, id string) (*models.Resource, error)
}

type courseUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type courseEnrollmentReader interface {
	ListStudentsByCourse(ctx context.Context, courseID string) ([]models.EnrolledStudent, error)
}

// CourseService owns course creation, curriculum provisioning and the
// teacher-facing course surface.
type CourseService struct {
	courses     courseRepo
	users       courseUserReader
	enrollments courseEnrollmentReader
	storage     *storage.LocalStorage
	signer      *storage.SignedURLSigner
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses courseRepo, users courseUserReader, enrollments courseEnrollmentReader, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		courses:     courses,
		users:       users,
		enrollments: enrollments,
		storage:     store,
		signer:      signer,
		validator:   validate,
		logger:      logger,
	}
}

// Create validates the payload and provisions the course with its fixed
// curriculum in one atomic operation. Only admins create courses; the
// check runs against the stored role rather than trusting the claims
// alone.
func (s *CourseService) Create(ctx context.Context, creatorID string, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	creator, err := s.users.FindByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "creator account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load creator")
	}
	if creator.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only an administrator can create courses")
	}

	if req.TeacherID != nil && *req.TeacherID != "" {
		teacher, err := s.users.FindByID(ctx, *req.TeacherID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "assigned teacher not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
		}
		if teacher.Role != models.RoleTeacher {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assigned user is not a teacher")
		}
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Duration:    req.Duration,
		CreatedBy:   creator.ID,
		TeacherID:   req.TeacherID,
	}
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}
	if course.Duration == 0 {
		course.Duration = models.CurriculumTotalWeeks
	}

	if err := s.courses.CreateWithCurriculum(ctx, course); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course curriculum already provisioned")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.logger.Info("course provisioned",
		zap.String("course_id", course.ID),
		zap.Int("modules", models.CurriculumModules),
		zap.Int("blocks", models.CurriculumTotalWeeks),
	)
	return course, nil
}

// ListForTeacher returns the caller's courses with their enrolled
// students' completion summary.
func (s *CourseService) ListForTeacher(ctx context.Context, teacherID string) ([]dto.TeacherCourseItem, error) {
	courses, err := s.courses.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	items := make([]dto.TeacherCourseItem, 0, len(courses))
	for _, course := range courses {
		students, err := s.enrollments.ListStudentsByCourse(ctx, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course students")
		}
		items = append(items, dto.TeacherCourseItem{
			ID:       course.ID,
			Title:    course.Title,
			Duration: course.Duration,
			Level:    course.Level,
			Students: students,
		})
	}
	return items, nil
}

// DetailForTeacher returns the full course tree for an owned course.
// Absent and foreign courses both resolve to NOT_FOUND so ownership
// probing leaks nothing.
func (s *CourseService) DetailForTeacher(ctx context.Context, teacherID, courseID string) (*dto.CourseDetail, error) {
	course, err := s.courses.FindByIDAndTeacher(ctx, courseID, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	// Teacher view carries no student-relative block status.
	return s.buildDetail(ctx, course, nil)
}

// AddResource stores the uploaded file and attaches it to the block at
// the given week of an owned course.
func (s *CourseService) AddResource(ctx context.Context, teacherID, courseID string, weekNumber int, title string, file io.Reader) (*dto.ResourceItem, error) {
	if strings.TrimSpace(title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	if weekNumber < 1 || weekNumber > models.CurriculumTotalWeeks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "week number must be between 1 and 12")
	}

	if _, err := s.courses.FindByIDAndTeacher(ctx, courseID, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	block, err := s.courses.FindBlockByCourseAndWeek(ctx, courseID, weekNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no block at that week")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}

	fileRef := block.ID + "/" + uuid.NewString()
	if _, err := s.storage.SaveStream(fileRef, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	resource := &models.Resource{
		BlockID:    block.ID,
		UploadedBy: teacherID,
		Title:      title,
		FileRef:    fileRef,
	}
	if err := s.courses.CreateResource(ctx, resource); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}

	item := s.resourceItem(*resource)
	return &item, nil
}

// OpenResource validates the signed token and returns a read handle for
// the stored file together with its metadata.
func (s *CourseService) OpenResource(ctx context.Context, resourceID, token string) (*models.Resource, io.ReadCloser, error) {
	resource, err := s.courses.FindResource(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	tokenID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil || tokenID != resource.ID || relPath != resource.FileRef {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	file, err := s.storage.Open(resource.FileRef)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return resource, file, nil
}

// buildDetail assembles the course tree. When enrollment is non-nil the
// per-block status is evaluated for that student.
func (s *CourseService) buildDetail(ctx context.Context, course *models.Course, enrollment *models.Enrollment) (*dto.CourseDetail, error) {
	detail := &dto.CourseDetail{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Duration:    course.Duration,
		Level:       course.Level,
	}

	if course.TeacherID != nil {
		teacher, err := s.users.FindByID(ctx, *course.TeacherID)
		if err == nil {
			detail.TeacherName = teacher.Username
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
		}
	}

	modules, err := s.courses.ListModules(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}

	for _, module := range modules {
		blocks, err := s.courses.ListBlocks(ctx, module.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blocks")
		}

		moduleItem := dto.ModuleItem{
			Number:      module.Number,
			Title:       module.Title,
			Description: module.Description,
			Blocks:      make([]dto.BlockItem, 0, len(blocks)),
		}
		for _, block := range blocks {
			resources, err := s.courses.ListResources(ctx, block.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
			}

			blockItem := dto.BlockItem{
				WeekNumber:  block.WeekNumber,
				Title:       block.Title,
				Description: block.Description,
				Resources:   make([]dto.ResourceItem, 0, len(resources)),
			}
			if enrollment != nil {
				blockItem.Status = BlockStatus(enrollment, block.WeekNumber)
			}
			for _, resource := range resources {
				blockItem.Resources = append(blockItem.Resources, s.resourceItem(resource))
			}
			moduleItem.Blocks = append(moduleItem.Blocks, blockItem)
		}
		detail.Modules = append(detail.Modules, moduleItem)
	}
	return detail, nil
}

func (s *CourseService) resourceItem(resource models.Resource) dto.ResourceItem {
	item := dto.ResourceItem{
		ID:         resource.ID,
		Title:      resource.Title,
		UploadedAt: resource.UploadedAt.UTC().Format(time.RFC3339),
	}
	if s.signer != nil {
		if token, _, err := s.signer.Generate(resource.ID, resource.FileRef); err == nil {
			item.DownloadURL = "/api/resources/" + resource.ID + "/download?token=" + token
		} else {
			s.logger.Warn("failed to sign resource url", zap.String("resource_id", resource.ID), zap.Error(err))
		}
	}
	return item
}

// isUniqueViolation reports whether the error chain contains a Postgres
// unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	type coder interface{ SQLState() string }
	for e := err; e != nil; e = errors.Unwrap(e) {
		if c, ok := e.(coder); ok && c.SQLState() == "23505" {
			return true
		}
		if strings.Contains(e.Error(), "duplicate key value violates unique constraint") {
			return true
		}
	}
	return false
}
