package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type reportService interface {
	Generate(ctx context.Context, actorID string, req dto.GenerateReportRequest) (*models.Report, error)
	Publish(ctx context.Context, id string) (*models.Report, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Report, error)
	ListForStudent(ctx context.Context, studentID string, claims *models.JWTClaims) ([]models.Report, error)
}

// ReportHandler exposes progress report endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Generate godoc
// @Summary Generate progress report
// @Description Composes a draft report; regenerating a published report returns 409
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GenerateReportRequest true "Report window and commentary"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.GenerateReportRequest
	if !bindJSON(c, &req, "invalid report payload") {
		return
	}
	report, err := h.service.Generate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Publish godoc
// @Summary Publish report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/{id}/publish [post]
func (h *ReportHandler) Publish(c *gin.Context) {
	report, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Get godoc
// @Summary Get report
// @Description Learners and guardians only see published reports
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// ListForStudent godoc
// @Summary List a learner's reports
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /reports/student/{studentId} [get]
func (h *ReportHandler) ListForStudent(c *gin.Context) {
	reports, err := h.service.ListForStudent(c.Request.Context(), c.Param("studentId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reports)
}
