package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, actorID string, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error)
	MarkBulk(ctx context.Context, actorID string, req dto.BulkAttendanceRequest) ([]models.AttendanceRecord, error)
	Update(ctx context.Context, actorID, id string, req dto.UpdateAttendanceRequest) (*models.AttendanceRecord, error)
	List(ctx context.Context, query dto.AttendanceQuery, claims *models.JWTClaims) ([]models.AttendanceRecord, int, error)
	Stats(ctx context.Context, query dto.AttendanceQuery, claims *models.JWTClaims) (*models.AttendanceStats, error)
}

// AttendanceHandler exposes attendance marking and statistics.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MarkAttendanceRequest true "Attendance mark"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	record, err := h.service.Mark(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// MarkBulk godoc
// @Summary Mark attendance in bulk
// @Description Stores every mark or none
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkAttendanceRequest true "Attendance marks"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) MarkBulk(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.BulkAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	records, err := h.service.MarkBulk(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, records)
}

// Update godoc
// @Summary Update attendance mark
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Param payload body dto.UpdateAttendanceRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	record, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// List godoc
// @Summary List attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student ID"
// @Param subjectId query string false "Subject ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	var query dto.AttendanceQuery
	if !bindQuery(c, &query, "invalid attendance query") {
		return
	}
	records, total, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pageMeta(query.Page, query.PageSize, total))
}

// Stats godoc
// @Summary Attendance statistics
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param subjectId query string false "Subject ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/stats/{studentId} [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	var query dto.AttendanceQuery
	if !bindQuery(c, &query, "invalid attendance query") {
		return
	}
	query.StudentID = c.Param("studentId")
	stats, err := h.service.Stats(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
