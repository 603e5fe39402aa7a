package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

const examColumns = `id, title, subject_id, class_id, questions, total_points, duration_minutes, published, created_by, created_at, updated_at`

// ExamRepository persists exams and their question lists.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now

	const query = `INSERT INTO exams (` + examColumns + `)
VALUES (:id, :title, :subject_id, :class_id, :questions, :total_points, :duration_minutes, :published, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// FindByID returns an exam by id.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT ` + examColumns + ` FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	return &exam, nil
}

// SetPublished flips the published flag.
func (r *ExamRepository) SetPublished(ctx context.Context, id string, published bool) error {
	const query = `UPDATE exams SET published = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, published, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("publish exam: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SubmissionRepository persists scored exam submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, exam_id, student_id, answers, score, total_points, percentage, grade, submitted_at`

// Create inserts a submission. A second insert for the same (exam, student)
// fails with DUPLICATE_SUBMISSION.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.ExamSubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO exam_submissions (` + submissionColumns + `)
VALUES (:id, :exam_id, :student_id, :answers, :score, :total_points, :percentage, :grade, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return translateWriteError(err, "create exam submission", appErrors.ErrDuplicateSubmission)
	}
	return nil
}

// FindByExamAndStudent returns the learner's submission, or sql.ErrNoRows.
func (r *SubmissionRepository) FindByExamAndStudent(ctx context.Context, examID, studentID string) (*models.ExamSubmission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM exam_submissions WHERE exam_id = $1 AND student_id = $2`
	var sub models.ExamSubmission
	if err := r.db.GetContext(ctx, &sub, query, examID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find exam submission: %w", err)
	}
	return &sub, nil
}

// ListByExam returns all submissions for an exam, best score first.
func (r *SubmissionRepository) ListByExam(ctx context.Context, examID string) ([]models.ExamSubmission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM exam_submissions WHERE exam_id = $1 ORDER BY score DESC, submitted_at ASC`
	var subs []models.ExamSubmission
	if err := r.db.SelectContext(ctx, &subs, query, examID); err != nil {
		return nil, fmt.Errorf("list exam submissions: %w", err)
	}
	return subs, nil
}
