package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/scoring"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type examRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	SetPublished(ctx context.Context, id string, published bool) error
}

type submissionRepository interface {
	Create(ctx context.Context, sub *models.ExamSubmission) error
	FindByExamAndStudent(ctx context.Context, examID, studentID string) (*models.ExamSubmission, error)
	ListByExam(ctx context.Context, examID string) ([]models.ExamSubmission, error)
}

type subjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// ExamServiceConfig tunes submission scoring.
type ExamServiceConfig struct {
	StrictAnswers bool
}

// ExamService manages exams and scores learner submissions.
type ExamService struct {
	exams       examRepository
	submissions submissionRepository
	subjects    subjectLookup
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	config      ExamServiceConfig
}

// NewExamService constructs an ExamService.
func NewExamService(exams examRepository, submissions submissionRepository, subjects subjectLookup, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg ExamServiceConfig) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{
		exams:       exams,
		submissions: submissions,
		subjects:    subjects,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		config:      cfg,
	}
}

// Create stores a draft exam authored by actorID.
func (s *ExamService) Create(ctx context.Context, actorID string, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}

	questions := make(models.Questions, len(req.Questions))
	for i, q := range req.Questions {
		if q.CorrectOption >= len(q.Options) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("question %d: correct option %d is out of range", i+1, q.CorrectOption))
		}
		questions[i] = models.Question{Text: q.Text, Options: q.Options, CorrectOption: q.CorrectOption, Points: q.Points}
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		return nil, lookupError(err, "subject not found", "failed to load subject")
	}

	exam := &models.Exam{
		Title:           req.Title,
		SubjectID:       req.SubjectID,
		ClassID:         req.ClassID,
		Questions:       questions,
		TotalPoints:     questions.TotalPoints(),
		DurationMinutes: req.DurationMinutes,
		CreatedBy:       actorID,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, appErrors.Internal(err, "failed to create exam")
	}
	s.logger.Info("exam created", zap.String("exam_id", exam.ID), zap.Int("questions", len(questions)))
	return exam, nil
}

// Get returns an exam. Learners only see published exams and never the answer key.
func (s *ExamService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Exam, error) {
	exam, err := s.exams.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	if claims != nil && claims.Role.Staff() {
		return exam, nil
	}
	if !exam.Published {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	exam.Questions = exam.Questions.WithoutAnswers()
	return exam, nil
}

// Publish opens an exam for submissions.
func (s *ExamService) Publish(ctx context.Context, id string) (*models.Exam, error) {
	if err := s.exams.SetPublished(ctx, id, true); err != nil {
		return nil, lookupError(err, "exam not found", "failed to publish exam")
	}
	exam, err := s.exams.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	return exam, nil
}

// Submit scores a learner's only attempt at an exam.
func (s *ExamService) Submit(ctx context.Context, examID, studentID string, req dto.SubmitExamRequest) (*models.ExamSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid submission payload")
	}
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a learner")
	}

	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	if !exam.Published {
		return nil, appErrors.Clone(appErrors.ErrConflict, "exam is not open for submissions")
	}

	existing, err := s.submissions.FindByExamAndStudent(ctx, examID, studentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check previous submission")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateSubmission, "exam already submitted")
	}

	answers := models.AnswerSet(req.Answers)
	outcome, err := scoring.ScoreSubmission(exam.Questions, answers, s.config.StrictAnswers)
	if err != nil {
		return nil, err
	}

	sub := &models.ExamSubmission{
		ExamID:      examID,
		StudentID:   studentID,
		Answers:     answers,
		Score:       outcome.Score,
		TotalPoints: outcome.TotalPoints,
		Percentage:  outcome.Percentage,
		Grade:       outcome.Grade,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, appErrors.ErrDuplicateSubmission) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateSubmission, "exam already submitted")
		}
		return nil, appErrors.Internal(err, "failed to store submission")
	}

	s.metrics.RecordSubmission(sub.Grade)
	s.logger.Info("exam submission scored",
		zap.String("exam_id", examID),
		zap.String("student_id", studentID),
		zap.Float64("score", sub.Score),
		zap.String("grade", sub.Grade),
	)
	return sub, nil
}

// ListSubmissions returns every submission of an exam.
func (s *ExamService) ListSubmissions(ctx context.Context, examID string) ([]models.ExamSubmission, error) {
	if _, err := s.exams.FindByID(ctx, examID); err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	subs, err := s.submissions.ListByExam(ctx, examID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list submissions")
	}
	return subs, nil
}

// MySubmission returns the learner's own submission.
func (s *ExamService) MySubmission(ctx context.Context, examID, studentID string) (*models.ExamSubmission, error) {
	sub, err := s.submissions.FindByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, lookupError(err, "submission not found", "failed to load submission")
	}
	return sub, nil
}
