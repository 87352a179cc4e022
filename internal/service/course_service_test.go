package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plataform/plataform-api/internal/models"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
	"github.com/plataform/plataform-api/pkg/storage"
)

type fakeCourseRepo struct {
	created    []*models.Course
	createErr  error
	courses    map[string]*models.Course
	owned      map[string]*models.Course
	modules    map[string][]models.Module
	blocks     map[string][]models.CourseBlock
	weekBlocks map[string]*models.CourseBlock
	resources  map[string][]models.Resource
	resByID    map[string]*models.Resource
	added      []*models.Resource
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses:    map[string]*models.Course{},
		owned:      map[string]*models.Course{},
		modules:    map[string][]models.Module{},
		blocks:     map[string][]models.CourseBlock{},
		weekBlocks: map[string]*models.CourseBlock{},
		resources:  map[string][]models.Resource{},
		resByID:    map[string]*models.Resource{},
	}
}

func (f *fakeCourseRepo) CreateWithCurriculum(_ context.Context, course *models.Course) error {
	if f.createErr != nil {
		return f.createErr
	}
	course.ID = fmt.Sprintf("course-%d", len(f.created)+1)
	f.created = append(f.created, course)
	return nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (f *fakeCourseRepo) FindByIDAndTeacher(_ context.Context, id, teacherID string) (*models.Course, error) {
	course, ok := f.owned[id+"|"+teacherID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (f *fakeCourseRepo) ListByTeacher(_ context.Context, teacherID string) ([]models.Course, error) {
	out := make([]models.Course, 0)
	for key, course := range f.owned {
		if strings.HasSuffix(key, "|"+teacherID) {
			out = append(out, *course)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) ListModules(_ context.Context, courseID string) ([]models.Module, error) {
	return f.modules[courseID], nil
}

func (f *fakeCourseRepo) ListBlocks(_ context.Context, moduleID string) ([]models.CourseBlock, error) {
	return f.blocks[moduleID], nil
}

func (f *fakeCourseRepo) FindBlockByCourseAndWeek(_ context.Context, courseID string, weekNumber int) (*models.CourseBlock, error) {
	block, ok := f.weekBlocks[fmt.Sprintf("%s|%d", courseID, weekNumber)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return block, nil
}

func (f *fakeCourseRepo) ListResources(_ context.Context, blockID string) ([]models.Resource, error) {
	return f.resources[blockID], nil
}

func (f *fakeCourseRepo) CreateResource(_ context.Context, resource *models.Resource) error {
	resource.ID = fmt.Sprintf("res-%d", len(f.added)+1)
	resource.UploadedAt = time.Now().UTC()
	f.added = append(f.added, resource)
	f.resByID[resource.ID] = resource
	return nil
}

func (f *fakeCourseRepo) FindResource(_ context.Context, id string) (*models.Resource, error) {
	resource, ok := f.resByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return resource, nil
}

type fakeUserReader struct {
	users map[string]*models.User
}

func (f *fakeUserReader) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

type fakeCourseEnrollments struct {
	students map[string][]models.EnrolledStudent
}

func (f *fakeCourseEnrollments) ListStudentsByCourse(_ context.Context, courseID string) ([]models.EnrolledStudent, error) {
	return f.students[courseID], nil
}

type uniqueViolation struct{}

func (uniqueViolation) Error() string    { return "duplicate key value violates unique constraint" }
func (uniqueViolation) SQLState() string { return "23505" }

func adminUsers() *fakeUserReader {
	return &fakeUserReader{users: map[string]*models.User{
		"admin-1":   {ID: "admin-1", Role: models.RoleAdmin},
		"teacher-1": {ID: "teacher-1", Role: models.RoleTeacher, Username: "profe"},
		"student-1": {ID: "student-1", Role: models.RoleStudent},
	}}
}

func TestCreateCourseAppliesDefaults(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, nil, nil, nil, nil)

	course, err := svc.Create(context.Background(), "admin-1", models.CreateCourseRequest{Title: "Go desde cero"})
	require.NoError(t, err)
	assert.Equal(t, models.LevelBeginner, course.Level)
	assert.Equal(t, models.CurriculumTotalWeeks, course.Duration)
	assert.Equal(t, "admin-1", course.CreatedBy)
	require.Len(t, repo.created, 1)
}

func TestCreateCourseRejectsNonAdmin(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, nil, nil, nil, nil)

	for _, creator := range []string{"teacher-1", "student-1", "ghost"} {
		_, err := svc.Create(context.Background(), creator, models.CreateCourseRequest{Title: "X"})
		require.Error(t, err, creator)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	}
	assert.Empty(t, repo.created)
}

func TestCreateCourseValidatesAssignedTeacher(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, nil, nil, nil, nil)

	studentID := "student-1"
	_, err := svc.Create(context.Background(), "admin-1", models.CreateCourseRequest{Title: "X", TeacherID: &studentID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateCourseDuplicateIsConflict(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.createErr = uniqueViolation{}
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), "admin-1", models.CreateCourseRequest{Title: "X"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDetailForTeacherHidesForeignCourses(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.owned["c1|owner"] = &models.Course{ID: "c1", Title: "Go"}
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, nil, nil, nil, nil)

	_, err := svc.DetailForTeacher(context.Background(), "intruder", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	detail, err := svc.DetailForTeacher(context.Background(), "owner", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Go", detail.Title)
}

func TestTeacherDetailCarriesNoBlockStatus(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.owned["c1|owner"] = &models.Course{ID: "c1", Title: "Go"}
	repo.modules["c1"] = []models.Module{{ID: "m1", CourseID: "c1", Number: 1, Title: "Módulo 1"}}
	repo.blocks["m1"] = []models.CourseBlock{{ID: "b1", ModuleID: "m1", WeekNumber: 1, Title: "Semana 1"}}
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, nil, nil, nil, nil)

	detail, err := svc.DetailForTeacher(context.Background(), "owner", "c1")
	require.NoError(t, err)
	require.Len(t, detail.Modules, 1)
	require.Len(t, detail.Modules[0].Blocks, 1)
	assert.Empty(t, detail.Modules[0].Blocks[0].Status)
}

func TestAddResourceValidations(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.owned["c1|owner"] = &models.Course{ID: "c1"}
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, nil, nil, nil, nil)

	_, err := svc.AddResource(context.Background(), "owner", "c1", 1, "  ", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.AddResource(context.Background(), "owner", "c1", 13, "notes", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// Ownership check precedes block lookup.
	_, err = svc.AddResource(context.Background(), "intruder", "c1", 1, "notes", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// No block at that week.
	_, err = svc.AddResource(context.Background(), "owner", "c1", 1, "notes", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAddResourceAndDownloadRoundtrip(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.owned["c1|owner"] = &models.Course{ID: "c1"}
	repo.weekBlocks["c1|9"] = &models.CourseBlock{ID: "b9", ModuleID: "m3", WeekNumber: 9}

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, store, signer, nil, nil)

	item, err := svc.AddResource(context.Background(), "owner", "c1", 9, "apuntes", strings.NewReader("contenido"))
	require.NoError(t, err)
	assert.Equal(t, "apuntes", item.Title)
	require.Contains(t, item.DownloadURL, "/api/resources/"+item.ID+"/download?token=")

	token := item.DownloadURL[strings.Index(item.DownloadURL, "token=")+len("token="):]
	resource, reader, err := svc.OpenResource(context.Background(), item.ID, token)
	require.NoError(t, err)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(body))
	assert.Equal(t, "apuntes", resource.Title)
}

func TestOpenResourceRejectsForeignToken(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.owned["c1|owner"] = &models.Course{ID: "c1"}
	repo.weekBlocks["c1|1"] = &models.CourseBlock{ID: "b1", ModuleID: "m1", WeekNumber: 1}
	repo.weekBlocks["c1|2"] = &models.CourseBlock{ID: "b2", ModuleID: "m1", WeekNumber: 2}

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewCourseService(repo, adminUsers(), &fakeCourseEnrollments{}, store, signer, nil, nil)

	first, err := svc.AddResource(context.Background(), "owner", "c1", 1, "uno", strings.NewReader("1"))
	require.NoError(t, err)
	second, err := svc.AddResource(context.Background(), "owner", "c1", 2, "dos", strings.NewReader("2"))
	require.NoError(t, err)

	// A token minted for one resource must not open another.
	token := second.DownloadURL[strings.Index(second.DownloadURL, "token=")+len("token="):]
	_, _, err = svc.OpenResource(context.Background(), first.ID, token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
