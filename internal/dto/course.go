package dto

import "github.com/plataform/plataform-api/internal/models"

// ResourceItem is a block resource with its signed download link.
type ResourceItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	DownloadURL string `json:"download_url,omitempty"`
	UploadedAt  string `json:"uploaded_at"`
}

// BlockItem is a curriculum block within a course detail. Status is
// only present on the student view; the teacher view is not
// student-relative and leaves it empty.
type BlockItem struct {
	WeekNumber  int                `json:"week_number"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      models.BlockStatus `json:"status,omitempty"`
	Resources   []ResourceItem     `json:"resources"`
}

// ModuleItem groups blocks under a course module.
type ModuleItem struct {
	Number      int         `json:"number"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Blocks      []BlockItem `json:"blocks"`
}

// CourseDetail is the full course tree.
type CourseDetail struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Duration    int                `json:"duration"`
	Level       models.CourseLevel `json:"level"`
	TeacherName string             `json:"teacher_name,omitempty"`
	Modules     []ModuleItem       `json:"modules"`
}

// StudentCourseItem is one row of the student's course list.
type StudentCourseItem struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Duration    int                `json:"duration"`
	Level       models.CourseLevel `json:"level"`
	Status      string             `json:"status"`
}

// TeacherCourseItem is one row of the teacher's course list including
// the enrolled students' completion summary.
type TeacherCourseItem struct {
	ID       string                   `json:"id"`
	Title    string                   `json:"title"`
	Duration int                      `json:"duration"`
	Level    models.CourseLevel       `json:"level"`
	Students []models.EnrolledStudent `json:"students"`
}

// AddResourceRequest is the multipart metadata for resource uploads.
type AddResourceRequest struct {
	Title string `form:"title" validate:"required,max=200"`
}
