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

// CourseRepository handles persistence of courses and their curriculum
// tree (modules, blocks, resources).
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, title, description, level, duration, created_by, teacher_id, created_at, updated_at`

// CreateWithCurriculum inserts the course together with its fixed
// curriculum: 3 modules numbered 1..3, each holding 4 weekly blocks
// (module 1 covers weeks 1-4, module 2 weeks 5-8, module 3 weeks 9-12).
// Everything runs in one transaction so a partial curriculum can never
// be observed. Provisioning happens here and only here; course updates
// never touch the tree.
func (r *CourseRepository) CreateWithCurriculum(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const courseInsert = `INSERT INTO courses (id, title, description, level, duration, created_by, teacher_id, created_at, updated_at)
        VALUES (:id, :title, :description, :level, :duration, :created_by, :teacher_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, courseInsert, course); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}

	const moduleInsert = `INSERT INTO modules (id, course_id, number, title, description) VALUES ($1, $2, $3, $4, $5)`
	const blockInsert = `INSERT INTO course_blocks (id, module_id, week_number, title, description) VALUES ($1, $2, $3, $4, $5)`

	for number := 1; number <= models.CurriculumModules; number++ {
		moduleID := uuid.NewString()
		title := fmt.Sprintf("Módulo %d", number)
		description := fmt.Sprintf("Contenido del módulo %d.", number)
		if _, err := tx.ExecContext(ctx, moduleInsert, moduleID, course.ID, number, title, description); err != nil {
			return fmt.Errorf("insert module %d: %w", number, err)
		}

		firstWeek := (number-1)*models.CurriculumWeeksPerModule + 1
		for week := firstWeek; week < firstWeek+models.CurriculumWeeksPerModule; week++ {
			blockTitle := fmt.Sprintf("Semana %d", week)
			blockDescription := fmt.Sprintf("Contenido de la semana %d.", week)
			if _, err := tx.ExecContext(ctx, blockInsert, uuid.NewString(), moduleID, week, blockTitle, blockDescription); err != nil {
				return fmt.Errorf("insert block week %d: %w", week, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit course transaction: %w", err)
	}
	return nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1 LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// FindByIDAndTeacher resolves a course by (id, owner) in one query so
// an absent course and a foreign course are indistinguishable to the
// caller.
func (r *CourseRepository) FindByIDAndTeacher(ctx context.Context, id, teacherID string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1 AND teacher_id = $2 LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id and teacher: %w", err)
	}
	return &course, nil
}

// ListByTeacher returns the courses assigned to a teacher.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE teacher_id = $1 ORDER BY created_at DESC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// ListModules returns the modules of a course ordered by number.
func (r *CourseRepository) ListModules(ctx context.Context, courseID string) ([]models.Module, error) {
	const query = `SELECT id, course_id, number, title, description FROM modules WHERE course_id = $1 ORDER BY number ASC`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, courseID); err != nil {
		return nil, fmt.Errorf("list course modules: %w", err)
	}
	return modules, nil
}

// ListBlocks returns the blocks of a module ordered by week number.
func (r *CourseRepository) ListBlocks(ctx context.Context, moduleID string) ([]models.CourseBlock, error) {
	const query = `SELECT id, module_id, week_number, title, description FROM course_blocks WHERE module_id = $1 ORDER BY week_number ASC`
	var blocks []models.CourseBlock
	if err := r.db.SelectContext(ctx, &blocks, query, moduleID); err != nil {
		return nil, fmt.Errorf("list module blocks: %w", err)
	}
	return blocks, nil
}

// FindBlockByCourseAndWeek resolves a block through its module so the
// lookup is scoped to the course.
func (r *CourseRepository) FindBlockByCourseAndWeek(ctx context.Context, courseID string, weekNumber int) (*models.CourseBlock, error) {
	const query = `SELECT b.id, b.module_id, b.week_number, b.title, b.description
        FROM course_blocks b
        JOIN modules m ON m.id = b.module_id
        WHERE m.course_id = $1 AND b.week_number = $2 LIMIT 1`
	var block models.CourseBlock
	if err := r.db.GetContext(ctx, &block, query, courseID, weekNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course block: %w", err)
	}
	return &block, nil
}

// ListResources returns the resources of a block, newest first.
func (r *CourseRepository) ListResources(ctx context.Context, blockID string) ([]models.Resource, error) {
	const query = `SELECT id, block_id, uploaded_by, title, file_ref, uploaded_at FROM resources WHERE block_id = $1 ORDER BY uploaded_at DESC`
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, blockID); err != nil {
		return nil, fmt.Errorf("list block resources: %w", err)
	}
	return resources, nil
}

// CreateResource stores a resource row for a block.
func (r *CourseRepository) CreateResource(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	if resource.UploadedAt.IsZero() {
		resource.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO resources (id, block_id, uploaded_by, title, file_ref, uploaded_at) VALUES (:id, :block_id, :uploaded_by, :title, :file_ref, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// FindResource returns a resource by identifier.
func (r *CourseRepository) FindResource(ctx context.Context, id string) (*models.Resource, error) {
	const query = `SELECT id, block_id, uploaded_by, title, file_ref, uploaded_at FROM resources WHERE id = $1 LIMIT 1`
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find resource: %w", err)
	}
	return &resource, nil
}
