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

type attendanceRepository interface {
	Create(ctx context.Context, record *models.AttendanceRecord) error
	BulkCreate(ctx context.Context, records []models.AttendanceRecord) error
	Update(ctx context.Context, record *models.AttendanceRecord) error
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// AttendanceService marks attendance and summarises it.
type AttendanceService struct {
	repo      attendanceRepository
	subjects  subjectLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, subjects subjectLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

func (s *AttendanceService) toRecord(ctx context.Context, actorID string, req dto.MarkAttendanceRequest) (models.AttendanceRecord, error) {
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	subjectID := req.SubjectID
	if subjectID != nil && *subjectID == "" {
		subjectID = nil
	}
	if subjectID != nil {
		if _, err := s.subjects.FindByID(ctx, *subjectID); err != nil {
			return models.AttendanceRecord{}, lookupError(err, "subject not found", "failed to load subject")
		}
	}
	return models.AttendanceRecord{
		StudentID: req.StudentID,
		SubjectID: subjectID,
		Date:      date,
		Status:    models.AttendanceStatus(req.Status),
		Remarks:   req.Remarks,
		MarkedBy:  actorID,
	}, nil
}

// Mark stores one attendance mark. Marking the same (learner, date, subject)
// twice fails with DUPLICATE_RECORD.
func (s *AttendanceService) Mark(ctx context.Context, actorID string, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	record, err := s.toRecord(ctx, actorID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return nil, lookupError(err, "attendance not found", "failed to mark attendance")
	}
	s.cache.InvalidateLearner(ctx, record.StudentID)
	return &record, nil
}

// MarkBulk stores all marks or none.
func (s *AttendanceService) MarkBulk(ctx context.Context, actorID string, req dto.BulkAttendanceRequest) ([]models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	records := make([]models.AttendanceRecord, 0, len(req.Records))
	for _, item := range req.Records {
		record, err := s.toRecord(ctx, actorID, item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := s.repo.BulkCreate(ctx, records); err != nil {
		return nil, lookupError(err, "attendance not found", "failed to mark attendance")
	}

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.StudentID]; ok {
			continue
		}
		seen[r.StudentID] = struct{}{}
		s.cache.InvalidateLearner(ctx, r.StudentID)
	}
	s.logger.Info("bulk attendance marked", zap.Int("records", len(records)))
	return records, nil
}

// Update changes the status or remarks of a mark.
func (s *AttendanceService) Update(ctx context.Context, actorID, id string, req dto.UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "attendance not found", "failed to load attendance")
	}
	record.Status = models.AttendanceStatus(req.Status)
	record.Remarks = req.Remarks
	record.MarkedBy = actorID
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, lookupError(err, "attendance not found", "failed to update attendance")
	}
	s.cache.InvalidateLearner(ctx, record.StudentID)
	return record, nil
}

func (s *AttendanceService) filter(query dto.AttendanceQuery, claims *models.JWTClaims) (models.AttendanceFilter, error) {
	if err := s.validator.Struct(query); err != nil {
		return models.AttendanceFilter{}, validationError(err, "invalid attendance query")
	}
	studentID, err := scopeLearner(query.StudentID, claims)
	if err != nil {
		return models.AttendanceFilter{}, err
	}
	from, err := parseOptionalDate(query.From, "from")
	if err != nil {
		return models.AttendanceFilter{}, err
	}
	to, err := parseOptionalDate(query.To, "to")
	if err != nil {
		return models.AttendanceFilter{}, err
	}
	return models.AttendanceFilter{
		StudentID: studentID,
		SubjectID: query.SubjectID,
		DateFrom:  from,
		DateTo:    to,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}, nil
}

// List returns a page of marks visible to the caller.
func (s *AttendanceService) List(ctx context.Context, query dto.AttendanceQuery, claims *models.JWTClaims) ([]models.AttendanceRecord, int, error) {
	filter, err := s.filter(query, claims)
	if err != nil {
		return nil, 0, err
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Internal(err, "failed to list attendance")
	}
	return records, total, nil
}

// Stats aggregates a learner's attendance inside the optional window.
func (s *AttendanceService) Stats(ctx context.Context, query dto.AttendanceQuery, claims *models.JWTClaims) (*models.AttendanceStats, error) {
	filter, err := s.filter(query, claims)
	if err != nil {
		return nil, err
	}
	if filter.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	records, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance")
	}
	stats := scoring.AggregateAttendance(records)
	return &stats, nil
}
