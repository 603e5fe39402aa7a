package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRepositoryStatsForStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignment_submissions s JOIN assignments a ON a.id = s.assignment_id")).
		WithArgs("stu-1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"total", "submitted", "graded"}).AddRow(4, 3, 2))

	stats, err := repo.StatsForStudent(context.Background(), "stu-1", from, to)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Submitted)
	assert.Equal(t, 2, stats.Graded)
	assert.Equal(t, 0.0, stats.CompletionRate)
}
