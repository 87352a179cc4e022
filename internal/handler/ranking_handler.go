package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plataform/plataform-api/internal/service"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
	"github.com/plataform/plataform-api/pkg/export"
	"github.com/plataform/plataform-api/pkg/response"
)

// RankingHandler exposes the aura leaderboard.
type RankingHandler struct {
	service *service.RankingService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewRankingHandler creates a new handler.
func NewRankingHandler(svc *service.RankingService, csv *export.CSVExporter, pdf *export.PDFExporter) *RankingHandler {
	return &RankingHandler{service: svc, csv: csv, pdf: pdf}
}

// Leaderboard godoc
// @Summary Aura leaderboard
// @Description Ranked students by aura plus the caller's own entry
// @Tags Ranking
// @Produce json
// @Param search query string false "Filter by first name, last name or email"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /ranking [get]
func (h *RankingHandler) Leaderboard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	board, err := h.service.Leaderboard(c.Request.Context(), claims.UserID, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, board, nil)
}

// Export godoc
// @Summary Export the leaderboard
// @Description Render the unfiltered leaderboard as CSV or PDF
// @Tags Ranking
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /ranking/export [get]
func (h *RankingHandler) Export(c *gin.Context) {
	dataset, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		body, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="ranking.csv"`)
		c.Data(http.StatusOK, "text/csv", body)
	case "pdf":
		body, err := h.pdf.Render(dataset, "Aura Ranking")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="ranking.pdf"`)
		c.Data(http.StatusOK, "application/pdf", body)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
