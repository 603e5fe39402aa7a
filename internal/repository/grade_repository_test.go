package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

var gradeRowColumns = []string{"id", "student_id", "subject_id", "subject_name", "exam_type", "marks", "total_marks", "grade", "term", "academic_year", "date", "graded_by", "remarks", "created_at", "updated_at"}

func TestGradeRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(gradeRowColumns).
		AddRow("g-1", "stu-1", "subj-1", "Math", "quiz", 42.0, 50.0, "A-", "Term 1", "2024/2025", now, "teacher-1", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN subjects s ON s.id = g.subject_id WHERE g.student_id = $1 AND g.term = $2 AND g.academic_year = $3 ORDER BY g.date ASC")).
		WithArgs("stu-1", "Term 1", "2024/2025").
		WillReturnRows(rows)

	grades, err := repo.List(context.Background(), models.GradeFilter{StudentID: "stu-1", Term: "Term 1", AcademicYear: "2024/2025"})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "Math", grades[0].SubjectName)
	assert.Equal(t, "A-", grades[0].Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListWithoutFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN subjects s ON s.id = g.subject_id ORDER BY g.date ASC")).
		WillReturnRows(sqlmock.NewRows(gradeRowColumns))

	grades, err := repo.List(context.Background(), models.GradeFilter{})
	require.NoError(t, err)
	assert.Empty(t, grades)
}

func TestGradeRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE grades SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &models.GradeRecord{ID: "missing", Marks: 1, TotalMarks: 2})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestGradeRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM grades WHERE id = $1")).WithArgs("g-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "g-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
