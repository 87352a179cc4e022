package models

// Grade bounds for module grades. Zero is the ungraded sentinel set by
// the lazy backfill.
const (
	GradeUngraded = 0
	GradeMin      = 1
	GradeMax      = 5
)

// ModuleGrade records one grade per (enrollment, module) pair. Rows are
// materialized lazily by the backfill and never deleted.
type ModuleGrade struct {
	ID           string `db:"id" json:"id"`
	EnrollmentID string `db:"enrollment_id" json:"enrollment_id"`
	ModuleID     string `db:"module_id" json:"module_id"`
	Grade        int    `db:"grade" json:"grade"`
}

// ModuleGradeEntry is a grade row joined with the module number.
type ModuleGradeEntry struct {
	ModuleNumber int `db:"module_number" json:"module_number"`
	Grade        int `db:"grade" json:"grade"`
}

// SetGradeRequest assigns a grade to a module within an enrollment.
type SetGradeRequest struct {
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	ModuleID     string `json:"module_id" validate:"required"`
	Grade        int    `json:"grade"`
}
