package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plataform/plataform-api/internal/models"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
)

type fakeEnrollmentRepo struct {
	byPair    map[string]*models.Enrollment
	byStudent map[string][]models.EnrollmentSummary
	advanced  []advanceCall
}

type advanceCall struct {
	id             string
	completedWeeks int
	completed      bool
}

func pairKey(studentID, courseID string) string { return studentID + "|" + courseID }

func (f *fakeEnrollmentRepo) FindByStudentAndCourse(_ context.Context, studentID, courseID string) (*models.Enrollment, error) {
	enrollment, ok := f.byPair[pairKey(studentID, courseID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return enrollment, nil
}

func (f *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]models.EnrollmentSummary, error) {
	return f.byStudent[studentID], nil
}

func (f *fakeEnrollmentRepo) AdvanceProgress(_ context.Context, id string, completedWeeks int, completed bool) error {
	f.advanced = append(f.advanced, advanceCall{id: id, completedWeeks: completedWeeks, completed: completed})
	for _, enrollment := range f.byPair {
		if enrollment.ID != id {
			continue
		}
		if completedWeeks > enrollment.CompletedWeeks {
			enrollment.CompletedWeeks = completedWeeks
		}
		if completed && !enrollment.Completed {
			enrollment.Completed = true
			now := time.Now().UTC()
			enrollment.CompletedAt = &now
		}
	}
	return nil
}

type fakeCourseOwnership struct {
	owned map[string]*models.Course
}

func (f *fakeCourseOwnership) FindByIDAndTeacher(_ context.Context, id, teacherID string) (*models.Course, error) {
	course, ok := f.owned[pairKey(id, teacherID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func TestListForStudentStatus(t *testing.T) {
	repo := &fakeEnrollmentRepo{byStudent: map[string][]models.EnrollmentSummary{
		"s1": {
			{Enrollment: models.Enrollment{ID: "e1", CourseID: "c1", Completed: true}, CourseTitle: "Go", CourseDuration: 12},
			{Enrollment: models.Enrollment{ID: "e2", CourseID: "c2"}, CourseTitle: "SQL", CourseDuration: 12},
		},
	}}
	svc := NewEnrollmentService(repo, &fakeCourseOwnership{}, nil, nil, nil)

	items, err := svc.ListForStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "completed", items[0].Status)
	assert.Equal(t, "in_progress", items[1].Status)
}

func TestDetailForStudentRequiresEnrollment(t *testing.T) {
	repo := &fakeEnrollmentRepo{byPair: map[string]*models.Enrollment{}}
	svc := NewEnrollmentService(repo, &fakeCourseOwnership{}, nil, nil, nil)

	_, err := svc.DetailForStudent(context.Background(), "s1", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAdvanceProgressCompletesAtCourseDuration(t *testing.T) {
	enrollment := &models.Enrollment{ID: "e1", StudentID: "s1", CourseID: "c1", CompletedWeeks: 10}
	repo := &fakeEnrollmentRepo{byPair: map[string]*models.Enrollment{pairKey("s1", "c1"): enrollment}}
	courses := &fakeCourseOwnership{owned: map[string]*models.Course{
		pairKey("c1", "t1"): {ID: "c1", Duration: 12},
	}}
	svc := NewEnrollmentService(repo, courses, nil, nil, nil)

	updated, err := svc.AdvanceProgress(context.Background(), "t1", "c1", "s1", models.UpdateProgressRequest{CompletedWeeks: 12})
	require.NoError(t, err)
	require.Len(t, repo.advanced, 1)
	assert.True(t, repo.advanced[0].completed)
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletedAt)
	assert.Equal(t, 12, updated.CompletedWeeks)
}

func TestAdvanceProgressBelowDurationStaysInProgress(t *testing.T) {
	enrollment := &models.Enrollment{ID: "e1", StudentID: "s1", CourseID: "c1"}
	repo := &fakeEnrollmentRepo{byPair: map[string]*models.Enrollment{pairKey("s1", "c1"): enrollment}}
	courses := &fakeCourseOwnership{owned: map[string]*models.Course{
		pairKey("c1", "t1"): {ID: "c1", Duration: 12},
	}}
	svc := NewEnrollmentService(repo, courses, nil, nil, nil)

	updated, err := svc.AdvanceProgress(context.Background(), "t1", "c1", "s1", models.UpdateProgressRequest{CompletedWeeks: 7})
	require.NoError(t, err)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletedAt)
	assert.Equal(t, 7, updated.CompletedWeeks)
}

func TestAdvanceProgressForeignCourseIsNotFound(t *testing.T) {
	repo := &fakeEnrollmentRepo{}
	courses := &fakeCourseOwnership{owned: map[string]*models.Course{
		pairKey("c1", "owner"): {ID: "c1", Duration: 12},
	}}
	svc := NewEnrollmentService(repo, courses, nil, nil, nil)

	_, err := svc.AdvanceProgress(context.Background(), "intruder", "c1", "s1", models.UpdateProgressRequest{CompletedWeeks: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.advanced)
}
