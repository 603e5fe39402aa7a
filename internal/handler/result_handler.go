package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type resultService interface {
	Compose(ctx context.Context, actorID string, req dto.ComposeResultRequest) (*models.Result, error)
	Get(ctx context.Context, studentID string, query dto.ResultQuery, claims *models.JWTClaims) (*models.Result, error)
	History(ctx context.Context, studentID string, claims *models.JWTClaims) ([]models.Result, error)
}

// ResultHandler exposes term result composition and lookup.
type ResultHandler struct {
	service resultService
}

// NewResultHandler constructs a ResultHandler.
func NewResultHandler(svc resultService) *ResultHandler {
	return &ResultHandler{service: svc}
}

// Compose godoc
// @Summary Compose term result
// @Description Recomputes the result from stored grades and attendance and replaces any previous snapshot
// @Tags Results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ComposeResultRequest true "Scoring window"
// @Success 200 {object} response.Envelope
// @Router /results/compose [post]
func (h *ResultHandler) Compose(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.ComposeResultRequest
	if !bindJSON(c, &req, "invalid compose payload") {
		return
	}
	result, err := h.service.Compose(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Get godoc
// @Summary Get term result
// @Tags Results
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param term query string true "Term"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/{studentId} [get]
func (h *ResultHandler) Get(c *gin.Context) {
	var query dto.ResultQuery
	if !bindQuery(c, &query, "invalid result query") {
		return
	}
	result, err := h.service.Get(c.Request.Context(), c.Param("studentId"), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// History godoc
// @Summary Result history
// @Tags Results
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /results/{studentId}/history [get]
func (h *ResultHandler) History(c *gin.Context) {
	results, err := h.service.History(c.Request.Context(), c.Param("studentId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, results)
}
