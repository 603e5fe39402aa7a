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
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

const attendanceColumns = `id, student_id, subject_id, date, status, remarks, marked_by, created_at, updated_at`

const insertAttendance = `INSERT INTO attendance (` + attendanceColumns + `)
VALUES (:id, :student_id, :subject_id, :date, :status, :remarks, :marked_by, :created_at, :updated_at)`

// AttendanceRepository persists attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func prepareAttendance(record *models.AttendanceRecord, now time.Time) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

// Create inserts one mark. A second mark for the same (student, date, subject)
// fails with DUPLICATE_RECORD.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	prepareAttendance(record, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertAttendance, record); err != nil {
		return translateWriteError(err, "create attendance", appErrors.ErrDuplicateRecord)
	}
	return nil
}

// BulkCreate inserts all marks in one transaction; any duplicate rolls back the batch.
func (r *AttendanceRepository) BulkCreate(ctx context.Context, records []models.AttendanceRecord) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk attendance: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range records {
		prepareAttendance(&records[i], now)
		if _, err = tx.NamedExecContext(ctx, insertAttendance, &records[i]); err != nil {
			return translateWriteError(err, "bulk create attendance", appErrors.ErrDuplicateRecord)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk attendance: %w", err)
	}
	return nil
}

// Update rewrites status and remarks of a mark.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance SET status = :status, remarks = :remarks, marked_by = :marked_by, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns a single mark.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance WHERE id = $1`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &record, nil
}

func attendanceWhere(filter models.AttendanceFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.StudentID != "" {
		add("student_id = $%d", filter.StudentID)
	}
	if filter.SubjectID != "" {
		add("subject_id = $%d", filter.SubjectID)
	}
	if filter.DateFrom != nil {
		add("date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("date <= $%d", *filter.DateTo)
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns one page of marks and the total count.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where, args := attendanceWhere(filter)
	page, size := normalisePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM attendance%s ORDER BY date DESC, created_at DESC LIMIT %d OFFSET %d", attendanceColumns, where, size, (page-1)*size)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM attendance"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// ListAll returns every mark matching the filter, ignoring pagination.
func (r *AttendanceRepository) ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	where, args := attendanceWhere(filter)
	query := "SELECT " + attendanceColumns + " FROM attendance" + where + " ORDER BY date ASC"
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list all attendance: %w", err)
	}
	return records, nil
}
