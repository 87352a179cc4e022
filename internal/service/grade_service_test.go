package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plataform/plataform-api/internal/models"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
)

type fakeGradeRepo struct {
	moduleCourse   map[string]string
	entries        map[string][]models.ModuleGradeEntry
	ensured        []string
	setCalls       int
	lastEnrollment string
	lastModule     string
	lastGrade      int
	ensureErr      error
	setErr         error
}

func (f *fakeGradeRepo) EnsureForEnrollment(_ context.Context, enrollmentID string) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.ensured = append(f.ensured, enrollmentID)
	return nil
}

func (f *fakeGradeRepo) ListByEnrollment(_ context.Context, enrollmentID string) ([]models.ModuleGradeEntry, error) {
	return f.entries[enrollmentID], nil
}

func (f *fakeGradeRepo) FindModuleCourse(_ context.Context, moduleID string) (string, error) {
	courseID, ok := f.moduleCourse[moduleID]
	if !ok {
		return "", sql.ErrNoRows
	}
	return courseID, nil
}

func (f *fakeGradeRepo) SetGrade(_ context.Context, enrollmentID, moduleID string, grade int) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls++
	f.lastEnrollment = enrollmentID
	f.lastModule = moduleID
	f.lastGrade = grade
	return nil
}

type fakeGradeEnrollments struct {
	byID      map[string]*models.Enrollment
	byStudent map[string][]models.EnrollmentSummary
}

func (f *fakeGradeEnrollments) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	enrollment, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return enrollment, nil
}

func (f *fakeGradeEnrollments) ListByStudent(_ context.Context, studentID string) ([]models.EnrollmentSummary, error) {
	return f.byStudent[studentID], nil
}

func TestSetGradeRejectsOutOfRange(t *testing.T) {
	repo := &fakeGradeRepo{}
	svc := NewGradeService(repo, &fakeGradeEnrollments{}, nil, nil)

	for _, grade := range []int{-1, 0, 6, 10} {
		err := svc.SetGrade(context.Background(), models.SetGradeRequest{
			EnrollmentID: "e1", ModuleID: "m1", Grade: grade,
		})
		require.Error(t, err, "grade %d", grade)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidGrade.Code, appErr.Code)
	}
	assert.Zero(t, repo.setCalls)
}

func TestSetGradeUnknownEnrollment(t *testing.T) {
	svc := NewGradeService(&fakeGradeRepo{}, &fakeGradeEnrollments{byID: map[string]*models.Enrollment{}}, nil, nil)

	err := svc.SetGrade(context.Background(), models.SetGradeRequest{
		EnrollmentID: "missing", ModuleID: "m1", Grade: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSetGradeModuleFromAnotherCourse(t *testing.T) {
	repo := &fakeGradeRepo{moduleCourse: map[string]string{"m1": "other-course"}}
	enrollments := &fakeGradeEnrollments{byID: map[string]*models.Enrollment{
		"e1": {ID: "e1", CourseID: "course-1"},
	}}
	svc := NewGradeService(repo, enrollments, nil, nil)

	err := svc.SetGrade(context.Background(), models.SetGradeRequest{
		EnrollmentID: "e1", ModuleID: "m1", Grade: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrModuleNotInCourse.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.setCalls)
}

func TestSetGradeUnknownModule(t *testing.T) {
	repo := &fakeGradeRepo{moduleCourse: map[string]string{}}
	enrollments := &fakeGradeEnrollments{byID: map[string]*models.Enrollment{
		"e1": {ID: "e1", CourseID: "course-1"},
	}}
	svc := NewGradeService(repo, enrollments, nil, nil)

	err := svc.SetGrade(context.Background(), models.SetGradeRequest{
		EnrollmentID: "e1", ModuleID: "ghost", Grade: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrModuleNotInCourse.Code, appErrors.FromError(err).Code)
}

func TestSetGradeStoresBoundaryValues(t *testing.T) {
	repo := &fakeGradeRepo{moduleCourse: map[string]string{"m1": "course-1"}}
	enrollments := &fakeGradeEnrollments{byID: map[string]*models.Enrollment{
		"e1": {ID: "e1", CourseID: "course-1"},
	}}
	svc := NewGradeService(repo, enrollments, nil, nil)

	for _, grade := range []int{models.GradeMin, models.GradeMax} {
		err := svc.SetGrade(context.Background(), models.SetGradeRequest{
			EnrollmentID: "e1", ModuleID: "m1", Grade: grade,
		})
		require.NoError(t, err)
		assert.Equal(t, grade, repo.lastGrade)
	}
	assert.Equal(t, 2, repo.setCalls)
	assert.Equal(t, "e1", repo.lastEnrollment)
	assert.Equal(t, "m1", repo.lastModule)
}

func TestStudentGradesBackfillsEveryEnrollment(t *testing.T) {
	repo := &fakeGradeRepo{
		entries: map[string][]models.ModuleGradeEntry{
			"e1": {{ModuleNumber: 1, Grade: 4}, {ModuleNumber: 2, Grade: 0}, {ModuleNumber: 3, Grade: 0}},
			"e2": {{ModuleNumber: 1, Grade: 0}, {ModuleNumber: 2, Grade: 0}, {ModuleNumber: 3, Grade: 0}},
		},
	}
	enrollments := &fakeGradeEnrollments{byStudent: map[string][]models.EnrollmentSummary{
		"student-1": {
			{Enrollment: models.Enrollment{ID: "e1", CourseID: "c1", Completed: true}, CourseTitle: "Go"},
			{Enrollment: models.Enrollment{ID: "e2", CourseID: "c2"}, CourseTitle: "SQL"},
		},
	}}
	svc := NewGradeService(repo, enrollments, nil, nil)

	grades, err := svc.StudentGrades(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, repo.ensured)
	require.Len(t, grades, 2)
	assert.Equal(t, "Go", grades[0].CourseTitle)
	assert.True(t, grades[0].Completed)
	assert.Len(t, grades[0].Modules, 3)
	assert.Equal(t, models.GradeUngraded, grades[1].Modules[0].Grade)
}

func TestStudentGradesRequiresStudentID(t *testing.T) {
	svc := NewGradeService(&fakeGradeRepo{}, &fakeGradeEnrollments{}, nil, nil)

	_, err := svc.StudentGrades(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
