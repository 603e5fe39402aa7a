package models

import (
	"database/sql/driver"
	"time"
)

// ReportType enumerates report periods.
type ReportType string

const (
	ReportTypeWeekly  ReportType = "weekly"
	ReportTypeMonthly ReportType = "monthly"
	ReportTypeTerm    ReportType = "term"
	ReportTypeAnnual  ReportType = "annual"
)

// AssignmentStats summarises assignment completion in a report window.
type AssignmentStats struct {
	Total          int     `db:"total" json:"total"`
	Submitted      int     `db:"submitted" json:"submitted"`
	Graded         int     `db:"graded" json:"graded"`
	CompletionRate float64 `db:"-" json:"completionRate"`
}

// Value marshals the snapshot for a JSONB column.
func (s AssignmentStats) Value() (driver.Value, error) {
	return jsonValue(s)
}

// Scan unmarshals the JSONB column.
func (s *AssignmentStats) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Report is a learner progress report for (student, type, period). Reports
// start as drafts and become visible to learners and guardians once published.
type Report struct {
	ID               string          `db:"id" json:"id"`
	StudentID        string          `db:"student_id" json:"student_id"`
	Type             ReportType      `db:"type" json:"type"`
	Period           string          `db:"period" json:"period"`
	Attendance       AttendanceStats `db:"attendance" json:"attendance"`
	Grades           GradeStats      `db:"grades" json:"grades"`
	Assignments      AssignmentStats `db:"assignments" json:"assignments"`
	Comments         string          `db:"comments" json:"comments"`
	Strengths        string          `db:"strengths" json:"strengths"`
	ImprovementAreas string          `db:"improvement_areas" json:"improvement_areas"`
	Published        bool            `db:"published" json:"published"`
	PublishedAt      *time.Time      `db:"published_at" json:"published_at,omitempty"`
	GeneratedBy      string          `db:"generated_by" json:"generated_by"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
