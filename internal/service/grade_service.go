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

type gradeRepository interface {
	Create(ctx context.Context, grade *models.GradeRecord) error
	Update(ctx context.Context, grade *models.GradeRecord) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.GradeRecord, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
}

// GradeService records assessment marks and keeps their letter grade in sync.
type GradeService struct {
	grades    gradeRepository
	subjects  subjectLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(grades gradeRepository, subjects subjectLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

// Create records a new grade graded by actorID.
func (s *GradeService) Create(ctx context.Context, actorID string, req dto.CreateGradeRequest) (*models.GradeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		return nil, lookupError(err, "subject not found", "failed to load subject")
	}

	grade := &models.GradeRecord{
		StudentID:    req.StudentID,
		SubjectID:    subject.ID,
		SubjectName:  subject.Name,
		ExamType:     models.ExamType(req.ExamType),
		Marks:        *req.Marks,
		TotalMarks:   req.TotalMarks,
		Term:         req.Term,
		AcademicYear: req.AcademicYear,
		Date:         date,
		GradedBy:     actorID,
		Remarks:      req.Remarks,
	}
	if grade.Grade, err = scoring.ClassifyGrade(grade.Marks, grade.TotalMarks); err != nil {
		return nil, err
	}

	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, appErrors.Internal(err, "failed to create grade")
	}
	s.cache.InvalidateLearner(ctx, grade.StudentID)
	return grade, nil
}

// Update applies the provided fields and recomputes the letter grade.
func (s *GradeService) Update(ctx context.Context, id string, req dto.UpdateGradeRequest) (*models.GradeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "grade not found", "failed to load grade")
	}

	if req.ExamType != nil {
		grade.ExamType = models.ExamType(*req.ExamType)
	}
	if req.Marks != nil {
		grade.Marks = *req.Marks
	}
	if req.TotalMarks != nil {
		grade.TotalMarks = *req.TotalMarks
	}
	if req.Term != nil {
		grade.Term = *req.Term
	}
	if req.AcademicYear != nil {
		grade.AcademicYear = *req.AcademicYear
	}
	if req.Date != nil {
		if grade.Date, err = parseDate(*req.Date, "date"); err != nil {
			return nil, err
		}
	}
	if req.Remarks != nil {
		grade.Remarks = req.Remarks
	}
	if grade.Grade, err = scoring.ClassifyGrade(grade.Marks, grade.TotalMarks); err != nil {
		return nil, err
	}

	if err := s.grades.Update(ctx, grade); err != nil {
		return nil, lookupError(err, "grade not found", "failed to update grade")
	}
	s.cache.InvalidateLearner(ctx, grade.StudentID)
	return grade, nil
}

// Delete removes a grade record.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "grade not found", "failed to load grade")
	}
	if err := s.grades.Delete(ctx, id); err != nil {
		return lookupError(err, "grade not found", "failed to delete grade")
	}
	s.cache.InvalidateLearner(ctx, grade.StudentID)
	return nil
}

// List returns grades visible to the caller. Learners and guardians are
// pinned to their linked learner.
func (s *GradeService) List(ctx context.Context, query dto.GradeQuery, claims *models.JWTClaims) ([]models.GradeRecord, error) {
	studentID, err := scopeLearner(query.StudentID, claims)
	if err != nil {
		return nil, err
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{
		StudentID:    studentID,
		SubjectID:    query.SubjectID,
		Term:         query.Term,
		AcademicYear: query.AcademicYear,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grades")
	}
	return grades, nil
}

// Stats aggregates a learner's grades with unweighted averages per subject name.
func (s *GradeService) Stats(ctx context.Context, studentID, term, academicYear string) (*models.GradeStats, error) {
	key := gradeStatsCacheKey(studentID, term, academicYear)
	var cached models.GradeStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	grades, err := s.grades.List(ctx, models.GradeFilter{StudentID: studentID, Term: term, AcademicYear: academicYear})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load grades")
	}
	stats, err := scoring.AggregateGrades(grades)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, stats)
	return &stats, nil
}

// scopeLearner resolves which learner a query may touch.
func scopeLearner(requested string, claims *models.JWTClaims) (string, error) {
	if claims == nil {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "missing claims")
	}
	if claims.Role.Staff() {
		return requested, nil
	}
	if claims.StudentID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a learner")
	}
	if requested != "" && requested != claims.StudentID {
		return "", appErrors.Clone(appErrors.ErrForbidden, "cannot access another learner's records")
	}
	return claims.StudentID, nil
}
