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
)

const reportColumns = `id, student_id, type, period, attendance, grades, assignments, comments, strengths, improvement_areas, published, published_at, generated_by, created_at, updated_at`

// ErrReportLocked is returned by UpsertDraft when the existing report is already published.
var ErrReportLocked = errors.New("report already published")

// ReportRepository persists learner progress reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// UpsertDraft stores a draft keyed by (student, type, period). A published
// report is never overwritten; ErrReportLocked is returned instead.
func (r *ReportRepository) UpsertDraft(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	const query = `INSERT INTO reports (` + reportColumns + `)
VALUES (:id, :student_id, :type, :period, :attendance, :grades, :assignments, :comments, :strengths, :improvement_areas, :published, :published_at, :generated_by, :created_at, :updated_at)
ON CONFLICT (student_id, type, period) DO UPDATE SET
attendance = EXCLUDED.attendance, grades = EXCLUDED.grades, assignments = EXCLUDED.assignments,
comments = EXCLUDED.comments, strengths = EXCLUDED.strengths, improvement_areas = EXCLUDED.improvement_areas,
generated_by = EXCLUDED.generated_by, updated_at = EXCLUDED.updated_at
WHERE reports.published = FALSE
RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, report)
	if err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("upsert report rows: %w", err)
		}
		return ErrReportLocked
	}
	if err := rows.Scan(&report.ID, &report.CreatedAt); err != nil {
		return fmt.Errorf("scan upserted report: %w", err)
	}
	return nil
}

// FindByID returns a report by id.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		err = translateLookupError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &report, nil
}

// ListByStudent returns reports of a learner, newest first. publishedOnly hides drafts.
func (r *ReportRepository) ListByStudent(ctx context.Context, studentID string, publishedOnly bool) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE student_id = $1`
	if publishedOnly {
		query += ` AND published = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, studentID); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// MarkPublished persists the publish transition. It only touches drafts, so a
// concurrent publish reports ErrReportLocked.
func (r *ReportRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE reports SET published = TRUE, published_at = $2, updated_at = $2 WHERE id = $1 AND published = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrReportLocked
	}
	return nil
}
