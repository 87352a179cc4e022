package models

import "time"

// CourseLevel is the difficulty tier of a course.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// Curriculum shape constants. Every course gets the same fixed 12-week
// layout: 3 modules of 4 weekly blocks each.
const (
	CurriculumModules        = 3
	CurriculumWeeksPerModule = 4
	CurriculumTotalWeeks     = CurriculumModules * CurriculumWeeksPerModule
)

// Course is created by an admin and optionally taught by a teacher.
// Its structural shape is immutable once the curriculum is provisioned.
type Course struct {
	ID          string      `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Level       CourseLevel `db:"level" json:"level"`
	Duration    int         `db:"duration" json:"duration"`
	CreatedBy   string      `db:"created_by" json:"created_by"`
	TeacherID   *string     `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// Module is a numbered section of a course. Numbers are unique per
// course and never renumbered.
type Module struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Number      int    `db:"number" json:"number"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
}

// CourseBlock is a single week-long unit inside a module. Week numbers
// are unique per module and constrained to [1,12].
type CourseBlock struct {
	ID          string `db:"id" json:"id"`
	ModuleID    string `db:"module_id" json:"module_id"`
	WeekNumber  int    `db:"week_number" json:"week_number"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
}

// Resource is a teacher-uploaded file attached to a block. FileRef is
// an opaque reference into the blob store.
type Resource struct {
	ID         string    `db:"id" json:"id"`
	BlockID    string    `db:"block_id" json:"block_id"`
	UploadedBy string    `db:"uploaded_by" json:"uploaded_by"`
	Title      string    `db:"title" json:"title"`
	FileRef    string    `db:"file_ref" json:"-"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// CreateCourseRequest is the admin payload for course creation.
type CreateCourseRequest struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description"`
	Duration    int         `json:"duration" validate:"omitempty,min=1"`
	Level       CourseLevel `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	TeacherID   *string     `json:"teacher_id,omitempty"`
}
