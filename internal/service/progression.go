package service

import "github.com/plataform/plataform-api/internal/models"

// BlockStatus derives the student-relative unlock state of a weekly
// block from the enrollment's progression cursor. It is a pure
// function: the result is computed per block at read time and never
// stored, because blocks are shared by every student of a course.
//
// A nil enrollment (student not enrolled in the block's course) locks
// everything. Weeks at or below the cursor are completed, the week
// directly after it is current, everything further out stays locked. A
// cursor past the course's last week simply completes all blocks.
func BlockStatus(enrollment *models.Enrollment, weekNumber int) models.BlockStatus {
	if enrollment == nil {
		return models.BlockLocked
	}
	switch {
	case weekNumber <= enrollment.CompletedWeeks:
		return models.BlockCompleted
	case weekNumber == enrollment.CompletedWeeks+1:
		return models.BlockCurrent
	default:
		return models.BlockLocked
	}
}
