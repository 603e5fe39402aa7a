package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/scoring"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type gradeLister interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
}

type attendanceLister interface {
	ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

type resultRepository interface {
	Upsert(ctx context.Context, result *models.Result) error
	Find(ctx context.Context, studentID, term, academicYear string) (*models.Result, error)
	FindByID(ctx context.Context, id string) (*models.Result, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Result, error)
}

// ResultService composes and serves term results.
type ResultService struct {
	grades     gradeLister
	attendance attendanceLister
	results    resultRepository
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewResultService constructs a ResultService.
func NewResultService(grades gradeLister, attendance attendanceLister, results resultRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{
		grades:     grades,
		attendance: attendance,
		results:    results,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// Compose recomputes the learner's result for a term and replaces any stored one.
func (s *ResultService) Compose(ctx context.Context, actorID string, req dto.ComposeResultRequest) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid compose payload")
	}
	from, err := parseOptionalDate(req.From, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate(req.To, "to")
	if err != nil {
		return nil, err
	}

	grades, err := s.grades.List(ctx, models.GradeFilter{StudentID: req.StudentID, Term: req.Term, AcademicYear: req.AcademicYear})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load grades")
	}
	attendance, err := s.attendance.ListAll(ctx, models.AttendanceFilter{StudentID: req.StudentID, DateFrom: from, DateTo: endOfDay(to)})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance")
	}

	result, err := scoring.ComposeResult(scoring.ResultInput{
		StudentID:    req.StudentID,
		Term:         req.Term,
		AcademicYear: req.AcademicYear,
		Grades:       grades,
		Attendance:   attendance,
		GeneratedBy:  actorID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.results.Upsert(ctx, result); err != nil {
		return nil, appErrors.Internal(err, "failed to store result")
	}

	s.cache.InvalidateLearner(ctx, req.StudentID)
	s.cache.Set(ctx, resultCacheKey(req.StudentID, req.Term, req.AcademicYear), result)
	s.metrics.RecordResult(string(result.Status))
	s.logger.Info("result composed",
		zap.String("student_id", req.StudentID),
		zap.String("term", req.Term),
		zap.String("academic_year", req.AcademicYear),
		zap.Float64("percentage", result.Percentage),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

// Get returns the stored result for a scoring window.
func (s *ResultService) Get(ctx context.Context, studentID string, query dto.ResultQuery, claims *models.JWTClaims) (*models.Result, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "term and academicYear are required")
	}
	if !claims.CanViewLearner(studentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot access another learner's results")
	}

	key := resultCacheKey(studentID, query.Term, query.AcademicYear)
	var cached models.Result
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := s.results.Find(ctx, studentID, query.Term, query.AcademicYear)
	if err != nil {
		return nil, lookupError(err, "result not found", "failed to load result")
	}
	s.cache.Set(ctx, key, result)
	return result, nil
}

// History lists every stored result of a learner.
func (s *ResultService) History(ctx context.Context, studentID string, claims *models.JWTClaims) ([]models.Result, error) {
	if !claims.CanViewLearner(studentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot access another learner's results")
	}
	results, err := s.results.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list results")
	}
	return results, nil
}

// FindByID loads a result for exports.
func (s *ResultService) FindByID(ctx context.Context, id string) (*models.Result, error) {
	result, err := s.results.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "result not found", "failed to load result")
	}
	return result, nil
}
