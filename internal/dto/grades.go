package dto

import "github.com/plataform/plataform-api/internal/models"

// EnrollmentGrades lists the module grades of one enrollment, backfilled
// on read so every course module has exactly one entry.
type EnrollmentGrades struct {
	CourseID    string                    `json:"course_id"`
	CourseTitle string                    `json:"course_title"`
	Completed   bool                      `json:"completed"`
	Modules     []models.ModuleGradeEntry `json:"modules"`
}
