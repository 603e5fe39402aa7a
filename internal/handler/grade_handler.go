package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type gradeService interface {
	Create(ctx context.Context, actorID string, req dto.CreateGradeRequest) (*models.GradeRecord, error)
	Update(ctx context.Context, id string, req dto.UpdateGradeRequest) (*models.GradeRecord, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query dto.GradeQuery, claims *models.JWTClaims) ([]models.GradeRecord, error)
	Stats(ctx context.Context, studentID, term, academicYear string) (*models.GradeStats, error)
}

// GradeHandler manages grade HTTP endpoints.
type GradeHandler struct {
	service gradeService
}

// NewGradeHandler constructs a GradeHandler.
func NewGradeHandler(svc gradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Create godoc
// @Summary Record grade
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateGradeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	grade, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Update grade
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade ID"
// @Param payload body dto.UpdateGradeRequest true "Grade changes"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	var req dto.UpdateGradeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	grade, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Security BearerAuth
// @Param id path string true "Grade ID"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student ID"
// @Param subjectId query string false "Subject ID"
// @Param term query string false "Term"
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	var query dto.GradeQuery
	if !bindQuery(c, &query, "invalid grade query") {
		return
	}
	grades, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grades)
}

// Stats godoc
// @Summary Grade statistics
// @Description Unweighted averages per subject name
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param term query string false "Term"
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades/stats/{studentId} [get]
func (h *GradeHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("studentId"), c.Query("term"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
