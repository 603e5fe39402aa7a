package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type stubAttendanceRepo struct {
	records    []models.AttendanceRecord
	lastFilter models.AttendanceFilter
}

func attendanceKey(r models.AttendanceRecord) string {
	subject := ""
	if r.SubjectID != nil {
		subject = *r.SubjectID
	}
	return r.StudentID + "/" + r.Date.Format(dateLayout) + "/" + subject
}

func (s *stubAttendanceRepo) exists(r models.AttendanceRecord) bool {
	for _, existing := range s.records {
		if attendanceKey(existing) == attendanceKey(r) {
			return true
		}
	}
	return false
}

func (s *stubAttendanceRepo) Create(ctx context.Context, record *models.AttendanceRecord) error {
	if s.exists(*record) {
		return appErrors.Clone(appErrors.ErrDuplicateRecord, "")
	}
	record.ID = attendanceKey(*record)
	s.records = append(s.records, *record)
	return nil
}

func (s *stubAttendanceRepo) BulkCreate(ctx context.Context, records []models.AttendanceRecord) error {
	for _, r := range records {
		if s.exists(r) {
			return appErrors.Clone(appErrors.ErrDuplicateRecord, "")
		}
	}
	for i := range records {
		records[i].ID = attendanceKey(records[i])
		s.records = append(s.records, records[i])
	}
	return nil
}

func (s *stubAttendanceRepo) Update(ctx context.Context, record *models.AttendanceRecord) error {
	for i := range s.records {
		if s.records[i].ID == record.ID {
			s.records[i] = *record
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *stubAttendanceRepo) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	for _, r := range s.records {
		if r.ID == id {
			record := r
			return &record, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	out, _ := s.ListAll(ctx, filter)
	return out, len(out), nil
}

func (s *stubAttendanceRepo) ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	s.lastFilter = filter
	var out []models.AttendanceRecord
	for _, r := range s.records {
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != "" && (r.SubjectID == nil || *r.SubjectID != filter.SubjectID) {
			continue
		}
		if filter.DateFrom != nil && r.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && r.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func mark(studentID, date, status string) dto.MarkAttendanceRequest {
	return dto.MarkAttendanceRequest{StudentID: studentID, Date: date, Status: status}
}

func TestAttendanceServiceMarkRejectsDuplicates(t *testing.T) {
	repo := &stubAttendanceRepo{}
	svc := NewAttendanceService(repo, testSubjects, nil, nil, nil)
	ctx := context.Background()

	record, err := svc.Mark(ctx, "teacher-1", mark("stu-1", "2024-09-02", "Present"))
	require.NoError(t, err)
	assert.Nil(t, record.SubjectID)

	_, err = svc.Mark(ctx, "teacher-1", mark("stu-1", "2024-09-02", "Absent"))
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateRecord))

	withSubject := mark("stu-1", "2024-09-02", "Late")
	withSubject.SubjectID = strPtr("sub-math")
	_, err = svc.Mark(ctx, "teacher-1", withSubject)
	assert.NoError(t, err)

	emptySubject := mark("stu-1", "2024-09-02", "Late")
	emptySubject.SubjectID = strPtr("")
	_, err = svc.Mark(ctx, "teacher-1", emptySubject)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateRecord))

	_, err = svc.Mark(ctx, "teacher-1", mark("stu-1", "2024-09-03", "Sick"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceServiceMarkBulkIsAllOrNothing(t *testing.T) {
	repo := &stubAttendanceRepo{}
	svc := NewAttendanceService(repo, testSubjects, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Mark(ctx, "teacher-1", mark("stu-2", "2024-09-02", "Present"))
	require.NoError(t, err)

	_, err = svc.MarkBulk(ctx, "teacher-1", dto.BulkAttendanceRequest{Records: []dto.MarkAttendanceRequest{
		mark("stu-1", "2024-09-02", "Present"),
		mark("stu-2", "2024-09-02", "Absent"),
	}})
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateRecord))
	assert.Len(t, repo.records, 1)

	records, err := svc.MarkBulk(ctx, "teacher-1", dto.BulkAttendanceRequest{Records: []dto.MarkAttendanceRequest{
		mark("stu-1", "2024-09-02", "Present"),
		mark("stu-3", "2024-09-02", "Excused"),
	}})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Len(t, repo.records, 3)
}

func TestAttendanceServiceMarkUnknownSubject(t *testing.T) {
	repo := &stubAttendanceRepo{}
	svc := NewAttendanceService(repo, testSubjects, nil, nil, nil)
	ctx := context.Background()

	unknown := mark("stu-1", "2024-09-02", "Present")
	unknown.SubjectID = strPtr("sub-history")
	_, err := svc.Mark(ctx, "teacher-1", unknown)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	known := mark("stu-2", "2024-09-02", "Present")
	known.SubjectID = strPtr("sub-science")
	_, err = svc.MarkBulk(ctx, "teacher-1", dto.BulkAttendanceRequest{Records: []dto.MarkAttendanceRequest{known, unknown}})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.records)
}

func TestAttendanceServiceUpdate(t *testing.T) {
	repo := &stubAttendanceRepo{}
	svc := NewAttendanceService(repo, testSubjects, nil, nil, nil)
	ctx := context.Background()

	record, err := svc.Mark(ctx, "teacher-1", mark("stu-1", "2024-09-02", "Absent"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "teacher-2", record.ID, dto.UpdateAttendanceRequest{Status: "Excused", Remarks: strPtr("doctor's note")})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceExcused, updated.Status)
	assert.Equal(t, "teacher-2", updated.MarkedBy)

	_, err = svc.Update(ctx, "teacher-2", "missing", dto.UpdateAttendanceRequest{Status: "Present"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAttendanceServiceStats(t *testing.T) {
	repo := &stubAttendanceRepo{}
	svc := NewAttendanceService(repo, testSubjects, nil, nil, nil)
	ctx := context.Background()
	for _, m := range []dto.MarkAttendanceRequest{
		mark("stu-1", "2024-09-02", "Present"),
		mark("stu-1", "2024-09-03", "Late"),
		mark("stu-1", "2024-09-04", "Absent"),
		mark("stu-1", "2024-10-01", "Absent"),
		mark("stu-2", "2024-09-02", "Absent"),
	} {
		_, err := svc.Mark(ctx, "teacher-1", m)
		require.NoError(t, err)
	}

	staff := &models.JWTClaims{Role: models.RoleTeacher}
	stats, err := svc.Stats(ctx, dto.AttendanceQuery{StudentID: "stu-1", From: "2024-09-01", To: "2024-09-30"}, staff)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 1, stats.Late)
	assert.Equal(t, 66.67, stats.Percentage)

	_, err = svc.Stats(ctx, dto.AttendanceQuery{}, staff)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	parent := &models.JWTClaims{Role: models.RoleParent, StudentID: "stu-2"}
	own, err := svc.Stats(ctx, dto.AttendanceQuery{}, parent)
	require.NoError(t, err)
	assert.Equal(t, 0.0, own.Percentage)
	assert.Equal(t, "stu-2", repo.lastFilter.StudentID)

	_, err = svc.Stats(ctx, dto.AttendanceQuery{StudentID: "stu-1"}, parent)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestAttendanceServiceListReturnsTotal(t *testing.T) {
	repo := &stubAttendanceRepo{}
	svc := NewAttendanceService(repo, testSubjects, nil, nil, nil)
	ctx := context.Background()
	_, err := svc.Mark(ctx, "teacher-1", mark("stu-1", "2024-09-02", "Present"))
	require.NoError(t, err)

	records, total, err := svc.List(ctx, dto.AttendanceQuery{Page: 1, PageSize: 10}, &models.JWTClaims{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)

	_, _, err = svc.List(ctx, dto.AttendanceQuery{From: "02-09-2024"}, &models.JWTClaims{Role: models.RoleAdmin})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
