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
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type stubResultRepo struct {
	rows    map[string]*models.Result
	upserts int
	finds   int
}

func resultKey(studentID, term, year string) string {
	return studentID + "/" + term + "/" + year
}

func (s *stubResultRepo) Upsert(ctx context.Context, result *models.Result) error {
	if s.rows == nil {
		s.rows = map[string]*models.Result{}
	}
	s.upserts++
	key := resultKey(result.StudentID, result.Term, result.AcademicYear)
	if existing, ok := s.rows[key]; ok {
		result.ID = existing.ID
	} else {
		result.ID = "result-" + result.StudentID
	}
	stored := *result
	s.rows[key] = &stored
	return nil
}

func (s *stubResultRepo) Find(ctx context.Context, studentID, term, academicYear string) (*models.Result, error) {
	s.finds++
	row, ok := s.rows[resultKey(studentID, term, academicYear)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

func (s *stubResultRepo) FindByID(ctx context.Context, id string) (*models.Result, error) {
	for _, row := range s.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubResultRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Result, error) {
	var out []models.Result
	for _, row := range s.rows {
		if row.StudentID == studentID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func seededGrades() *stubGradeRepo {
	date := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	return &stubGradeRepo{grades: []models.GradeRecord{
		{ID: "g1", StudentID: "stu-1", SubjectID: "sub-math", SubjectName: "Mathematics", Marks: 10, TotalMarks: 100, Term: "Term 1", AcademicYear: "2024/2025", Date: date},
		{ID: "g2", StudentID: "stu-1", SubjectID: "sub-science", SubjectName: "Science", Marks: 30, TotalMarks: 50, Term: "Term 1", AcademicYear: "2024/2025", Date: date},
		{ID: "g3", StudentID: "stu-1", SubjectID: "sub-math", SubjectName: "Mathematics", Marks: 90, TotalMarks: 100, Term: "Term 2", AcademicYear: "2024/2025", Date: date},
	}}
}

func TestResultServiceComposeAndUpsert(t *testing.T) {
	grades := seededGrades()
	attendance := &stubAttendanceRepo{records: []models.AttendanceRecord{
		{ID: "a1", StudentID: "stu-1", Date: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), Status: models.AttendancePresent},
		{ID: "a2", StudentID: "stu-1", Date: time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC), Status: models.AttendanceAbsent},
	}}
	results := &stubResultRepo{}
	metrics := NewMetricsService()
	svc := NewResultService(grades, attendance, results, nil, metrics, nil, nil)
	ctx := context.Background()

	req := dto.ComposeResultRequest{StudentID: "stu-1", Term: "Term 1", AcademicYear: "2024/2025"}
	result, err := svc.Compose(ctx, "teacher-1", req)
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.TotalObtained)
	assert.Equal(t, 150.0, result.TotalPossible)
	assert.Equal(t, 35.0, result.Percentage)
	assert.Equal(t, models.ResultFail, result.Status)
	assert.Equal(t, 50.0, result.AttendancePercentage)
	require.Len(t, result.Subjects, 2)
	assert.Equal(t, "Mathematics", result.Subjects[0].Subject)

	grades.grades[0].Marks = 90
	again, err := svc.Compose(ctx, "teacher-2", req)
	require.NoError(t, err)
	assert.Equal(t, result.ID, again.ID)
	assert.Equal(t, models.ResultPass, again.Status)
	assert.Len(t, results.rows, 1)
	assert.Equal(t, "teacher-2", results.rows[resultKey("stu-1", "Term 1", "2024/2025")].GeneratedBy)
	assert.Equal(t, uint64(2), metrics.Snapshot().ResultsComposed)
}

func TestResultServiceComposeWithoutGrades(t *testing.T) {
	svc := NewResultService(&stubGradeRepo{}, &stubAttendanceRepo{}, &stubResultRepo{}, nil, nil, nil, nil)
	result, err := svc.Compose(context.Background(), "teacher-1", dto.ComposeResultRequest{StudentID: "stu-9", Term: "Term 1", AcademicYear: "2024/2025"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Percentage)
	assert.Equal(t, "F", result.Grade)
	assert.Equal(t, models.ResultFail, result.Status)
	assert.Empty(t, result.Subjects)
}

func TestResultServiceComposeValidates(t *testing.T) {
	svc := NewResultService(&stubGradeRepo{}, &stubAttendanceRepo{}, &stubResultRepo{}, nil, nil, nil, nil)
	_, err := svc.Compose(context.Background(), "teacher-1", dto.ComposeResultRequest{StudentID: "stu-1"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Compose(context.Background(), "teacher-1", dto.ComposeResultRequest{StudentID: "stu-1", Term: "T1", AcademicYear: "2024", From: "yesterday"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestResultServiceGetServesFromCache(t *testing.T) {
	results := &stubResultRepo{}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewResultService(seededGrades(), &stubAttendanceRepo{}, results, cache, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Compose(ctx, "teacher-1", dto.ComposeResultRequest{StudentID: "stu-1", Term: "Term 1", AcademicYear: "2024/2025"})
	require.NoError(t, err)

	learner := &models.JWTClaims{Role: models.RoleStudent, StudentID: "stu-1"}
	got, err := svc.Get(ctx, "stu-1", dto.ResultQuery{Term: "Term 1", AcademicYear: "2024/2025"}, learner)
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.Percentage)
	assert.Equal(t, 0, results.finds)

	_, err = svc.Get(ctx, "stu-1", dto.ResultQuery{Term: "Term 1", AcademicYear: "2024/2025"}, &models.JWTClaims{Role: models.RoleStudent, StudentID: "stu-2"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Get(ctx, "stu-1", dto.ResultQuery{Term: "Term 3", AcademicYear: "2024/2025"}, learner)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 1, results.finds)
}

func TestResultServiceHistory(t *testing.T) {
	svc := NewResultService(seededGrades(), &stubAttendanceRepo{}, &stubResultRepo{}, nil, nil, nil, nil)
	ctx := context.Background()
	for _, term := range []string{"Term 1", "Term 2"} {
		_, err := svc.Compose(ctx, "teacher-1", dto.ComposeResultRequest{StudentID: "stu-1", Term: term, AcademicYear: "2024/2025"})
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, "stu-1", &models.JWTClaims{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = svc.History(ctx, "stu-1", &models.JWTClaims{Role: models.RoleParent, StudentID: "stu-3"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
