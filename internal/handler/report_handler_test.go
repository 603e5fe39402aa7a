package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type reportServiceMock struct {
	generated  *dto.GenerateReportRequest
	actorID    string
	publishErr error
	listClaims *models.JWTClaims
}

func (m *reportServiceMock) Generate(ctx context.Context, actorID string, req dto.GenerateReportRequest) (*models.Report, error) {
	m.actorID = actorID
	m.generated = &req
	return &models.Report{ID: "report-1", StudentID: req.StudentID, Period: req.Period}, nil
}

func (m *reportServiceMock) Publish(ctx context.Context, id string) (*models.Report, error) {
	if m.publishErr != nil {
		return nil, m.publishErr
	}
	return &models.Report{ID: id, Published: true}, nil
}

func (m *reportServiceMock) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Report, error) {
	return &models.Report{ID: id}, nil
}

func (m *reportServiceMock) ListForStudent(ctx context.Context, studentID string, claims *models.JWTClaims) ([]models.Report, error) {
	m.listClaims = claims
	return []models.Report{{ID: "report-1", StudentID: studentID}}, nil
}

func TestReportHandlerGenerate(t *testing.T) {
	svc := &reportServiceMock{}
	h := NewReportHandler(svc)

	body := mustJSON(dto.GenerateReportRequest{StudentID: "stu-1", Type: "monthly", Period: "2024-09", From: "2024-09-01", To: "2024-09-30"})
	c, w := newGinContext(http.MethodPost, "/reports", body)
	withClaims(c, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	h.Generate(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "teacher-1", svc.actorID)
	require.NotNil(t, svc.generated)
	assert.Equal(t, "2024-09", svc.generated.Period)
}

func TestReportHandlerPublishTwiceConflicts(t *testing.T) {
	h := NewReportHandler(&reportServiceMock{publishErr: appErrors.Clone(appErrors.ErrConflict, "report already published")})

	c, w := newGinContext(http.MethodPost, "/reports/report-1/publish", nil)
	c.Params = gin.Params{{Key: "id", Value: "report-1"}}
	withClaims(c, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	h.Publish(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportHandlerListPassesClaims(t *testing.T) {
	svc := &reportServiceMock{}
	h := NewReportHandler(svc)
	claims := &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent, StudentID: "stu-1"}

	c, w := newGinContext(http.MethodGet, "/reports/student/stu-1", nil)
	c.Params = gin.Params{{Key: "studentId", Value: "stu-1"}}
	withClaims(c, claims)

	h.ListForStudent(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, claims, svc.listClaims)
}
