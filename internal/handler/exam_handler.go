package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type examService interface {
	Create(ctx context.Context, actorID string, req dto.CreateExamRequest) (*models.Exam, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Exam, error)
	Publish(ctx context.Context, id string) (*models.Exam, error)
	Submit(ctx context.Context, examID, studentID string, req dto.SubmitExamRequest) (*models.ExamSubmission, error)
	ListSubmissions(ctx context.Context, examID string) ([]models.ExamSubmission, error)
	MySubmission(ctx context.Context, examID, studentID string) (*models.ExamSubmission, error)
}

// ExamHandler exposes exam authoring and submission endpoints.
type ExamHandler struct {
	service examService
}

// NewExamHandler constructs an ExamHandler.
func NewExamHandler(svc examService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// Create godoc
// @Summary Create exam
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateExamRequest
	if !bindJSON(c, &req, "invalid exam payload") {
		return
	}
	exam, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Get godoc
// @Summary Get exam
// @Description Learners receive published exams without the answer key
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, exam)
}

// Publish godoc
// @Summary Publish exam
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/publish [post]
func (h *ExamHandler) Publish(c *gin.Context) {
	exam, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, exam)
}

// Submit godoc
// @Summary Submit exam answers
// @Description Scores the caller's only attempt; a second attempt returns 409 DUPLICATE_SUBMISSION
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param payload body dto.SubmitExamRequest true "Answers"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/submissions [post]
func (h *ExamHandler) Submit(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.SubmitExamRequest
	if !bindJSON(c, &req, "invalid submission payload") {
		return
	}
	sub, err := h.service.Submit(c.Request.Context(), c.Param("id"), claims.StudentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// ListSubmissions godoc
// @Summary List exam submissions
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/submissions [get]
func (h *ExamHandler) ListSubmissions(c *gin.Context) {
	subs, err := h.service.ListSubmissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, subs)
}

// MySubmission godoc
// @Summary Own exam submission
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id}/submissions/me [get]
func (h *ExamHandler) MySubmission(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	sub, err := h.service.MySubmission(c.Request.Context(), c.Param("id"), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sub)
}
