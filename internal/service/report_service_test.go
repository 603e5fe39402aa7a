package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/repository"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type stubReportRepo struct {
	rows map[string]*models.Report
}

func reportKey(r *models.Report) string {
	return r.StudentID + "/" + string(r.Type) + "/" + r.Period
}

func (s *stubReportRepo) UpsertDraft(ctx context.Context, report *models.Report) error {
	if s.rows == nil {
		s.rows = map[string]*models.Report{}
	}
	for _, row := range s.rows {
		if reportKey(row) != reportKey(report) {
			continue
		}
		if row.Published {
			return repository.ErrReportLocked
		}
		report.ID = row.ID
	}
	if report.ID == "" {
		report.ID = "report-" + report.Period
	}
	stored := *report
	s.rows[report.ID] = &stored
	return nil
}

func (s *stubReportRepo) FindByID(ctx context.Context, id string) (*models.Report, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (s *stubReportRepo) ListByStudent(ctx context.Context, studentID string, publishedOnly bool) ([]models.Report, error) {
	var out []models.Report
	for _, row := range s.rows {
		if row.StudentID != studentID || (publishedOnly && !row.Published) {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (s *stubReportRepo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	row, ok := s.rows[id]
	if !ok || row.Published {
		return repository.ErrReportLocked
	}
	row.Published = true
	row.PublishedAt = &at
	return nil
}

type stubAssignments struct {
	stats    models.AssignmentStats
	from, to time.Time
}

func (s *stubAssignments) StatsForStudent(ctx context.Context, studentID string, from, to time.Time) (models.AssignmentStats, error) {
	s.from, s.to = from, to
	return s.stats, nil
}

func newTestReportService() (*ReportService, *stubReportRepo, *stubAssignments) {
	reports := &stubReportRepo{}
	assignments := &stubAssignments{stats: models.AssignmentStats{Total: 4, Submitted: 3, Graded: 2}}
	attendance := &stubAttendanceRepo{records: []models.AttendanceRecord{
		{ID: "a1", StudentID: "stu-1", Date: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), Status: models.AttendancePresent},
		{ID: "a2", StudentID: "stu-1", Date: time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC), Status: models.AttendanceLate},
		{ID: "a3", StudentID: "stu-1", Date: time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC), Status: models.AttendanceAbsent},
	}}
	svc := NewReportService(seededGrades(), attendance, assignments, reports, nil, nil, nil)
	return svc, reports, assignments
}

func septemberReport() dto.GenerateReportRequest {
	return dto.GenerateReportRequest{
		StudentID: "stu-1",
		Type:      "monthly",
		Period:    "2024-09",
		From:      "2024-09-01",
		To:        "2024-09-30",
		Comments:  "Steady progress",
	}
}

func TestReportServiceGenerateComposesDraft(t *testing.T) {
	svc, reports, assignments := newTestReportService()

	report, err := svc.Generate(context.Background(), "teacher-1", septemberReport())
	require.NoError(t, err)
	assert.False(t, report.Published)
	assert.Equal(t, 3, report.Attendance.Total)
	assert.Equal(t, 66.67, report.Attendance.Percentage)
	assert.Equal(t, 3, report.Grades.TotalRecords)
	assert.Equal(t, 75.0, report.Assignments.CompletionRate)
	assert.Equal(t, "Steady progress", report.Comments)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), assignments.from)
	assert.True(t, assignments.to.After(time.Date(2024, 9, 30, 23, 0, 0, 0, time.UTC)))
	assert.Len(t, reports.rows, 1)

	again, err := svc.Generate(context.Background(), "teacher-1", septemberReport())
	require.NoError(t, err)
	assert.Equal(t, report.ID, again.ID)
	assert.Len(t, reports.rows, 1)
}

func TestReportServiceGenerateValidatesWindow(t *testing.T) {
	svc, _, _ := newTestReportService()
	req := septemberReport()
	req.To = "2024-08-01"
	_, err := svc.Generate(context.Background(), "teacher-1", req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	req = septemberReport()
	req.Type = "daily"
	_, err = svc.Generate(context.Background(), "teacher-1", req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestReportServicePublishIsOneWay(t *testing.T) {
	svc, reports, _ := newTestReportService()
	ctx := context.Background()
	report, err := svc.Generate(ctx, "teacher-1", septemberReport())
	require.NoError(t, err)

	published, err := svc.Publish(ctx, report.ID)
	require.NoError(t, err)
	assert.True(t, published.Published)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, reports.rows[report.ID].Published)

	_, err = svc.Publish(ctx, report.ID)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.Generate(ctx, "teacher-1", septemberReport())
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.True(t, reports.rows[report.ID].Published)

	_, err = svc.Publish(ctx, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceHidesDraftsFromLearners(t *testing.T) {
	svc, _, _ := newTestReportService()
	ctx := context.Background()
	report, err := svc.Generate(ctx, "teacher-1", septemberReport())
	require.NoError(t, err)

	parent := &models.JWTClaims{Role: models.RoleParent, StudentID: "stu-1"}
	_, err = svc.Get(ctx, report.ID, parent)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	list, err := svc.ListForStudent(ctx, "stu-1", parent)
	require.NoError(t, err)
	assert.Empty(t, list)

	staffList, err := svc.ListForStudent(ctx, "stu-1", &models.JWTClaims{Role: models.RoleTeacher})
	require.NoError(t, err)
	assert.Len(t, staffList, 1)

	_, err = svc.Publish(ctx, report.ID)
	require.NoError(t, err)

	visible, err := svc.Get(ctx, report.ID, parent)
	require.NoError(t, err)
	assert.True(t, visible.Published)
	list, err = svc.ListForStudent(ctx, "stu-1", parent)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	stranger := &models.JWTClaims{Role: models.RoleStudent, StudentID: "stu-2"}
	_, err = svc.Get(ctx, report.ID, stranger)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.ListForStudent(ctx, "stu-1", stranger)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
