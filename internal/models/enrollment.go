package models

import "time"

// BlockStatus is the student-relative unlock state of a course block.
// It is derived at read time and never persisted: blocks are shared
// between all students of a course.
type BlockStatus string

const (
	BlockLocked    BlockStatus = "locked"
	BlockCurrent   BlockStatus = "current"
	BlockCompleted BlockStatus = "completed"
)

// Enrollment links one student to one course, unique per pair.
// CompletedWeeks is the progression cursor and only ever grows.
type Enrollment struct {
	ID             string     `db:"id" json:"id"`
	StudentID      string     `db:"student_id" json:"student_id"`
	CourseID       string     `db:"course_id" json:"course_id"`
	Completed      bool       `db:"completed" json:"completed"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CompletedWeeks int        `db:"completed_weeks" json:"completed_weeks"`
	MeritPoints    int        `db:"merit_points" json:"merit_points"`
	EnrolledAt     time.Time  `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentSummary enriches Enrollment with course fields for the
// student course list.
type EnrollmentSummary struct {
	Enrollment
	CourseTitle       string      `db:"course_title" json:"course_title"`
	CourseDescription string      `db:"course_description" json:"course_description"`
	CourseDuration    int         `db:"course_duration" json:"course_duration"`
	CourseLevel       CourseLevel `db:"course_level" json:"course_level"`
}

// EnrolledStudent is the teacher view of one enrollment row.
type EnrolledStudent struct {
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
	Completed   bool   `db:"completed" json:"completed"`
	MeritPoints int    `db:"merit_points" json:"merit_points"`
}

// UpdateProgressRequest advances a student's progression cursor.
type UpdateProgressRequest struct {
	CompletedWeeks int `json:"completed_weeks" validate:"min=0"`
}
