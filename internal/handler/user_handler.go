package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plataform/plataform-api/internal/service"
	"github.com/plataform/plataform-api/pkg/response"
)

// UserHandler exposes user profiles.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// Profile godoc
// @Summary User profile
// @Description Full profile for the owner, public subset for everyone else
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	var callerID string
	if claims := claimsFromContext(c); claims != nil {
		callerID = claims.UserID
	}

	profile, err := h.service.Profile(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}
