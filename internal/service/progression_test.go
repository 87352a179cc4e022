package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plataform/plataform-api/internal/models"
)

func TestBlockStatusNilEnrollmentLocksEverything(t *testing.T) {
	for week := 1; week <= models.CurriculumTotalWeeks; week++ {
		assert.Equal(t, models.BlockLocked, BlockStatus(nil, week))
	}
}

func TestBlockStatusFreshEnrollment(t *testing.T) {
	enrollment := &models.Enrollment{CompletedWeeks: 0}

	assert.Equal(t, models.BlockCurrent, BlockStatus(enrollment, 1))
	for week := 2; week <= models.CurriculumTotalWeeks; week++ {
		assert.Equal(t, models.BlockLocked, BlockStatus(enrollment, week))
	}
}

func TestBlockStatusMidCourse(t *testing.T) {
	enrollment := &models.Enrollment{CompletedWeeks: 5}

	for week := 1; week <= 5; week++ {
		assert.Equal(t, models.BlockCompleted, BlockStatus(enrollment, week))
	}
	assert.Equal(t, models.BlockCurrent, BlockStatus(enrollment, 6))
	for week := 7; week <= models.CurriculumTotalWeeks; week++ {
		assert.Equal(t, models.BlockLocked, BlockStatus(enrollment, week))
	}
}

func TestBlockStatusCursorPastCourseEnd(t *testing.T) {
	enrollment := &models.Enrollment{CompletedWeeks: 20}

	for week := 1; week <= models.CurriculumTotalWeeks; week++ {
		assert.Equal(t, models.BlockCompleted, BlockStatus(enrollment, week))
	}
}

// Advancing the cursor never demotes a block: completed stays completed
// and locked only ever moves towards current.
func TestBlockStatusMonotonicUnderCursorGrowth(t *testing.T) {
	rank := map[models.BlockStatus]int{
		models.BlockLocked:    0,
		models.BlockCurrent:   1,
		models.BlockCompleted: 2,
	}

	for week := 1; week <= models.CurriculumTotalWeeks; week++ {
		prev := BlockStatus(&models.Enrollment{CompletedWeeks: 0}, week)
		for cursor := 1; cursor <= models.CurriculumTotalWeeks; cursor++ {
			next := BlockStatus(&models.Enrollment{CompletedWeeks: cursor}, week)
			assert.GreaterOrEqual(t, rank[next], rank[prev],
				"week %d regressed from %s to %s at cursor %d", week, prev, next, cursor)
			prev = next
		}
	}
}
