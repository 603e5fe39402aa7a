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

const resultColumns = `id, student_id, term, academic_year, subjects, total_obtained, total_possible, percentage, grade, status, attendance_percentage, generated_by, created_at, updated_at`

// ResultRepository persists composed term results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs the repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert stores the result keyed by (student, term, academic year). An
// existing row keeps its id and created_at; every other field is replaced.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	result.CreatedAt = now
	result.UpdatedAt = now

	const query = `INSERT INTO results (` + resultColumns + `)
VALUES (:id, :student_id, :term, :academic_year, :subjects, :total_obtained, :total_possible, :percentage, :grade, :status, :attendance_percentage, :generated_by, :created_at, :updated_at)
ON CONFLICT (student_id, term, academic_year) DO UPDATE SET
subjects = EXCLUDED.subjects, total_obtained = EXCLUDED.total_obtained, total_possible = EXCLUDED.total_possible,
percentage = EXCLUDED.percentage, grade = EXCLUDED.grade, status = EXCLUDED.status,
attendance_percentage = EXCLUDED.attendance_percentage, generated_by = EXCLUDED.generated_by, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, result)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&result.ID, &result.CreatedAt); err != nil {
			return fmt.Errorf("scan upserted result: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("upsert result rows: %w", err)
	}
	return nil
}

// Find returns the result for one scoring window.
func (r *ResultRepository) Find(ctx context.Context, studentID, term, academicYear string) (*models.Result, error) {
	const query = `SELECT ` + resultColumns + ` FROM results WHERE student_id = $1 AND term = $2 AND academic_year = $3`
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, studentID, term, academicYear); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find result: %w", err)
	}
	return &result, nil
}

// FindByID returns a result by id.
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.Result, error) {
	const query = `SELECT ` + resultColumns + ` FROM results WHERE id = $1`
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		err = translateLookupError(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find result by id: %w", err)
	}
	return &result, nil
}

// ListByStudent returns every stored result of a learner, newest year first.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Result, error) {
	const query = `SELECT ` + resultColumns + ` FROM results WHERE student_id = $1 ORDER BY academic_year DESC, term DESC`
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, studentID); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}
