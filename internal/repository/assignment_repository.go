package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

// AssignmentRepository reads assignment completion counts.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// StatsForStudent counts the learner's assignments due inside [from, to].
// CompletionRate is left for the caller to derive.
func (r *AssignmentRepository) StatsForStudent(ctx context.Context, studentID string, from, to time.Time) (models.AssignmentStats, error) {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE s.status IN ('submitted', 'graded')) AS submitted,
COUNT(*) FILTER (WHERE s.status = 'graded') AS graded
FROM assignment_submissions s JOIN assignments a ON a.id = s.assignment_id
WHERE s.student_id = $1 AND a.due_date BETWEEN $2 AND $3`
	var stats models.AssignmentStats
	if err := r.db.GetContext(ctx, &stats, query, studentID, from, to); err != nil {
		return models.AssignmentStats{}, fmt.Errorf("assignment stats: %w", err)
	}
	return stats, nil
}
