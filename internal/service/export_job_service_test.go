package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/repository"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/jobs"
)

type stubExportJobStore struct {
	jobs map[string]*models.ExportJob
}

func newStubExportJobStore() *stubExportJobStore {
	return &stubExportJobStore{jobs: map[string]*models.ExportJob{}}
}

func (s *stubExportJobStore) Create(ctx context.Context, job *models.ExportJob) error {
	job.ID = "job-" + job.Params.TargetID
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *stubExportJobStore) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *job
	return &clone, nil
}

func (s *stubExportJobStore) Update(ctx context.Context, id string, upd repository.ExportJobUpdate) error {
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if upd.Status != nil {
		job.Status = *upd.Status
	}
	if upd.Progress != nil {
		job.Progress = *upd.Progress
	}
	if upd.ResultURL != nil {
		job.ResultURL = upd.ResultURL
	}
	if upd.ErrorMessage != nil {
		job.ErrorMessage = upd.ErrorMessage
	}
	if upd.FinishedAt != nil {
		job.FinishedAt = upd.FinishedAt
	}
	return nil
}

func (s *stubExportJobStore) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *stubExportJobStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

type recordingQueue struct {
	enqueued []jobs.Job
	err      error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	return nil, errors.New("renderer unavailable")
}

func newTestExportJobService(t *testing.T) (*ExportJobService, *stubExportJobStore, *recordingQueue, *ExportService) {
	t.Helper()
	store := newStubExportJobStore()
	queue := &recordingQueue{}
	exporter := newTestExportService(t)
	results := stubResultLoader{"result-1": sampleResult()}
	draft := sampleReport()
	draft.ID = "report-draft"
	draft.Published = false
	reports := stubReportLoader{"report-1": sampleReport(), "report-draft": draft}
	svc := NewExportJobService(store, results, reports, queue, exporter, nil, nil, nil, ExportJobConfig{})
	return svc, store, queue, exporter
}

func TestExportJobServiceCreateJobEnqueues(t *testing.T) {
	svc, store, queue, _ := newTestExportJobService(t)
	claims := &models.JWTClaims{UserID: "user-parent", Role: models.RoleParent, StudentID: "stu-1"}

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{Type: "result", TargetID: "result-1", Format: "csv"}, claims)
	require.NoError(t, err)
	assert.Equal(t, string(models.ExportStatusQueued), resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
	assert.Equal(t, "user-parent", store.jobs[resp.ID].CreatedBy)
}

func TestExportJobServiceCreateJobChecksAccess(t *testing.T) {
	svc, _, queue, _ := newTestExportJobService(t)
	ctx := context.Background()
	other := &models.JWTClaims{UserID: "user-2", Role: models.RoleStudent, StudentID: "stu-2"}

	_, err := svc.CreateJob(ctx, dto.ExportRequest{Type: "result", TargetID: "result-1", Format: "pdf"}, other)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	owner := &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent, StudentID: "stu-1"}
	_, err = svc.CreateJob(ctx, dto.ExportRequest{Type: "report", TargetID: "report-draft", Format: "pdf"}, owner)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.CreateJob(ctx, dto.ExportRequest{Type: "roster", TargetID: "x", Format: "pdf"}, owner)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, queue.enqueued)
}

func TestExportJobServiceCreateJobMissingTarget(t *testing.T) {
	svc, store, queue, _ := newTestExportJobService(t)
	ctx := context.Background()
	admin := &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}

	_, err := svc.CreateJob(ctx, dto.ExportRequest{Type: "result", TargetID: "nope", Format: "csv"}, admin)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	_, err = svc.CreateJob(ctx, dto.ExportRequest{Type: "report", TargetID: "nope", Format: "pdf"}, admin)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.Empty(t, queue.enqueued)
	assert.Empty(t, store.jobs)
}

func TestExportJobServiceEnqueueFailureMarksJobFailed(t *testing.T) {
	svc, store, queue, _ := newTestExportJobService(t)
	queue.err = errors.New("queue stopped")

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Type: "result", TargetID: "result-1", Format: "csv"}, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, models.ExportStatusFailed, store.jobs["job-result-1"].Status)
}

func TestExportWorkerFinishesJobAndDownloadResolves(t *testing.T) {
	svc, store, queue, exporter := newTestExportJobService(t)
	ctx := context.Background()
	admin := &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}

	resp, err := svc.CreateJob(ctx, dto.ExportRequest{Type: "report", TargetID: "report-1", Format: "csv"}, admin)
	require.NoError(t, err)

	metrics := NewMetricsService()
	worker := NewExportWorker(store, exporter, metrics, 3, nil)
	require.NoError(t, worker.Handle(ctx, queue.enqueued[0]))

	status, err := svc.GetStatus(ctx, resp.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, string(models.ExportStatusFinished), status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.DownloadURL)

	download, err := svc.ResolveDownload(ctx, extractToken(*status.DownloadURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ExportFormatCSV, download.Format)

	_, err = svc.ResolveDownload(ctx, "garbage")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.GetStatus(ctx, resp.ID, &models.JWTClaims{UserID: "someone", Role: models.RoleStudent, StudentID: "stu-1"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestExportWorkerRetriesThenFails(t *testing.T) {
	svc, store, queue, _ := newTestExportJobService(t)
	ctx := context.Background()
	admin := &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}
	resp, err := svc.CreateJob(ctx, dto.ExportRequest{Type: "result", TargetID: "result-1", Format: "pdf"}, admin)
	require.NoError(t, err)

	worker := NewExportWorker(store, failingGenerator{}, nil, 2, nil)
	job := queue.enqueued[0]

	require.Error(t, worker.Handle(ctx, job))
	assert.Equal(t, models.ExportStatusQueued, store.jobs[resp.ID].Status)

	job.Attempt = 2
	require.Error(t, worker.Handle(ctx, job))
	status, err := svc.GetStatus(ctx, resp.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, string(models.ExportStatusFailed), status.Status)
	require.NotNil(t, status.Error)
	assert.Equal(t, "renderer unavailable", *status.Error)
}

func TestExportJobServiceRecoverPendingJobs(t *testing.T) {
	svc, store, queue, _ := newTestExportJobService(t)
	store.jobs["job-a"] = &models.ExportJob{ID: "job-a", Type: models.ExportTypeResult, Status: models.ExportStatusQueued}
	store.jobs["job-b"] = &models.ExportJob{ID: "job-b", Type: models.ExportTypeResult, Status: models.ExportStatusFinished}

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "job-a", queue.enqueued[0].ID)
}
