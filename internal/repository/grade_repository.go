package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

const gradeSelect = `SELECT g.id, g.student_id, g.subject_id, s.name AS subject_name, g.exam_type, g.marks, g.total_marks, g.grade,
g.term, g.academic_year, g.date, g.graded_by, g.remarks, g.created_at, g.updated_at
FROM grades g JOIN subjects s ON s.id = g.subject_id`

// GradeRepository persists grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Create inserts a grade record.
func (r *GradeRepository) Create(ctx context.Context, grade *models.GradeRecord) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now

	const query = `INSERT INTO grades (id, student_id, subject_id, exam_type, marks, total_marks, grade, term, academic_year, date, graded_by, remarks, created_at, updated_at)
VALUES (:id, :student_id, :subject_id, :exam_type, :marks, :total_marks, :grade, :term, :academic_year, :date, :graded_by, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a grade record.
func (r *GradeRepository) Update(ctx context.Context, grade *models.GradeRecord) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET exam_type = :exam_type, marks = :marks, total_marks = :total_marks, grade = :grade,
term = :term, academic_year = :academic_year, date = :date, remarks = :remarks, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a grade record.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns a grade record with its subject name.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.GradeRecord, error) {
	query := gradeSelect + ` WHERE g.id = $1`
	var grade models.GradeRecord
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find grade: %w", err)
	}
	return &grade, nil
}

// List returns grade records matching the filter ordered by date.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	var conditions []string
	var args []interface{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.StudentID != "" {
		add("g.student_id = $%d", filter.StudentID)
	}
	if filter.SubjectID != "" {
		add("g.subject_id = $%d", filter.SubjectID)
	}
	if filter.Term != "" {
		add("g.term = $%d", filter.Term)
	}
	if filter.AcademicYear != "" {
		add("g.academic_year = $%d", filter.AcademicYear)
	}
	if filter.DateFrom != nil {
		add("g.date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("g.date <= $%d", *filter.DateTo)
	}

	query := gradeSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY g.date ASC, g.created_at ASC"

	var grades []models.GradeRecord
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}
