package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/repository"
	"github.com/noah-isme/sma-academic-api/internal/scoring"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type reportRepository interface {
	UpsertDraft(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	ListByStudent(ctx context.Context, studentID string, publishedOnly bool) ([]models.Report, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
}

type assignmentStatsReader interface {
	StatsForStudent(ctx context.Context, studentID string, from, to time.Time) (models.AssignmentStats, error)
}

// ReportService generates, publishes and serves learner progress reports.
type ReportService struct {
	grades      gradeLister
	attendance  attendanceLister
	assignments assignmentStatsReader
	reports     reportRepository
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(grades gradeLister, attendance attendanceLister, assignments assignmentStatsReader, reports reportRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		grades:      grades,
		attendance:  attendance,
		assignments: assignments,
		reports:     reports,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Generate composes a draft report over [from, to]. Regenerating a draft
// replaces it; a published report cannot be regenerated.
func (s *ReportService) Generate(ctx context.Context, actorID string, req dto.GenerateReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid report payload")
	}
	from, err := parseDate(req.From, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseDate(req.To, "to")
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	until := endOfDay(&to)

	grades, err := s.grades.List(ctx, models.GradeFilter{StudentID: req.StudentID, DateFrom: &from, DateTo: until})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load grades")
	}
	attendance, err := s.attendance.ListAll(ctx, models.AttendanceFilter{StudentID: req.StudentID, DateFrom: &from, DateTo: until})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance")
	}
	assignments, err := s.assignments.StatsForStudent(ctx, req.StudentID, from, *until)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load assignment stats")
	}

	report, err := scoring.ComposeReport(scoring.ReportInput{
		StudentID:   req.StudentID,
		Type:        models.ReportType(req.Type),
		Period:      req.Period,
		Grades:      grades,
		Attendance:  attendance,
		Assignments: assignments,
		Commentary: scoring.Commentary{
			Comments:         req.Comments,
			Strengths:        req.Strengths,
			ImprovementAreas: req.ImprovementAreas,
		},
		GeneratedBy: actorID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.reports.UpsertDraft(ctx, report); err != nil {
		if errors.Is(err, repository.ErrReportLocked) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "report already published")
		}
		return nil, appErrors.Internal(err, "failed to store report")
	}
	s.metrics.RecordReport("generated")
	return report, nil
}

// Publish makes a draft visible to the learner and their guardians.
func (s *ReportService) Publish(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "report not found", "failed to load report")
	}
	if err := scoring.Publish(report, s.now()); err != nil {
		return nil, err
	}
	if err := s.reports.MarkPublished(ctx, id, *report.PublishedAt); err != nil {
		if errors.Is(err, repository.ErrReportLocked) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "report already published")
		}
		return nil, appErrors.Internal(err, "failed to publish report")
	}
	s.metrics.RecordReport("published")
	s.logger.Info("report published", zap.String("report_id", id), zap.String("student_id", report.StudentID))
	return report, nil
}

// Get returns a report. Drafts are hidden from learners and guardians.
func (s *ReportService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "report not found", "failed to load report")
	}
	if !visibleTo(report, claims) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return report, nil
}

// ListForStudent lists a learner's reports visible to the caller.
func (s *ReportService) ListForStudent(ctx context.Context, studentID string, claims *models.JWTClaims) ([]models.Report, error) {
	if !claims.CanViewLearner(studentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot access another learner's reports")
	}
	reports, err := s.reports.ListByStudent(ctx, studentID, !claims.Role.Staff())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list reports")
	}
	return reports, nil
}

// FindByID loads a report for exports without visibility checks.
func (s *ReportService) FindByID(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "report not found", "failed to load report")
	}
	return report, nil
}

func visibleTo(report *models.Report, claims *models.JWTClaims) bool {
	if claims == nil {
		return false
	}
	if claims.Role.Staff() {
		return true
	}
	return report.Published && claims.CanViewLearner(report.StudentID)
}
