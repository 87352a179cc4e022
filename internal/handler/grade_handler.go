package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plataform/plataform-api/internal/models"
	"github.com/plataform/plataform-api/internal/service"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
	"github.com/plataform/plataform-api/pkg/response"
)

// GradeHandler exposes the module grade ledger.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// StudentGrades godoc
// @Summary Module grades for a student
// @Description Backfills missing grade rows then returns per-enrollment module grades
// @Tags Grades
// @Produce json
// @Param student_id query string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) StudentGrades(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id required"))
		return
	}

	grades, err := h.service.StudentGrades(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grades, nil)
}

// SetGrade godoc
// @Summary Assign a module grade
// @Description Set the grade for a module within an enrollment
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.SetGradeRequest true "Grade payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) SetGrade(c *gin.Context) {
	var req models.SetGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	if err := h.service.SetGrade(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
