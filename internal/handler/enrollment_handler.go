package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plataform/plataform-api/internal/models"
	"github.com/plataform/plataform-api/internal/service"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
	"github.com/plataform/plataform-api/pkg/response"
)

// EnrollmentHandler exposes the student course views and the teacher
// progress update.
type EnrollmentHandler struct {
	service *service.EnrollmentService
}

// NewEnrollmentHandler creates a new handler.
func NewEnrollmentHandler(svc *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// ListForStudent godoc
// @Summary List own enrollments
// @Description List the authenticated student's courses with progress status
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/courses [get]
func (h *EnrollmentHandler) ListForStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courses, err := h.service.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, courses, nil)
}

// DetailForStudent godoc
// @Summary Course detail for an enrolled student
// @Description Full course tree with per-block progression status
// @Tags Enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/courses/{id} [get]
func (h *EnrollmentHandler) DetailForStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.DetailForStudent(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// AdvanceProgress godoc
// @Summary Advance a student's progress
// @Description Move the completed-weeks cursor forward for an enrollment in an owned course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param studentID path string true "Student ID"
// @Param payload body models.UpdateProgressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/courses/{id}/students/{studentID}/progress [post]
func (h *EnrollmentHandler) AdvanceProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
		return
	}

	enrollment, err := h.service.AdvanceProgress(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("studentID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, enrollment, nil)
}
