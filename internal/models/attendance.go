package models

import (
	"database/sql/driver"
	"time"
)

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceExcused AttendanceStatus = "Excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts toward the attendance percentage.
func (s AttendanceStatus) Attended() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// AttendanceRecord is one mark for a learner on a date, optionally for a subject.
// At most one record exists per (student, date, subject).
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	SubjectID *string          `db:"subject_id" json:"subject_id,omitempty"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Remarks   *string          `db:"remarks" json:"remarks,omitempty"`
	MarkedBy  string           `db:"marked_by" json:"marked_by"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter scopes attendance queries.
type AttendanceFilter struct {
	StudentID string
	SubjectID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// AttendanceStats counts records by status. Percentage is (present+late)/total*100
// rounded to two decimals, and 0 for an empty set.
type AttendanceStats struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	Excused    int     `json:"excused"`
	Percentage float64 `json:"percentage"`
}

// Value marshals the snapshot for a JSONB column.
func (s AttendanceStats) Value() (driver.Value, error) {
	return jsonValue(s)
}

// Scan unmarshals the JSONB column.
func (s *AttendanceStats) Scan(value interface{}) error {
	return scanJSON(value, s)
}
