package models

import (
	"database/sql/driver"
	"time"
)

// ResultStatus is the pass/fail outcome of a term result.
type ResultStatus string

const (
	ResultPass ResultStatus = "Pass"
	ResultFail ResultStatus = "Fail"
)

// SubjectResult holds summed marks for one subject inside a Result.
type SubjectResult struct {
	Subject       string  `json:"subject"`
	MarksObtained float64 `json:"marksObtained"`
	TotalMarks    float64 `json:"totalMarks"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
}

// SubjectResults is stored as JSONB on the result row.
type SubjectResults []SubjectResult

// Value marshals the subjects for persistence.
func (s SubjectResults) Value() (driver.Value, error) {
	if s == nil {
		s = SubjectResults{}
	}
	return jsonValue(s)
}

// Scan unmarshals the JSONB column.
func (s *SubjectResults) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Result is the snapshot for one (student, term, academic year). Recomposing
// overwrites every field of the existing row.
type Result struct {
	ID                   string         `db:"id" json:"id"`
	StudentID            string         `db:"student_id" json:"student_id"`
	Term                 string         `db:"term" json:"term"`
	AcademicYear         string         `db:"academic_year" json:"academic_year"`
	Subjects             SubjectResults `db:"subjects" json:"subjects"`
	TotalObtained        float64        `db:"total_obtained" json:"total_obtained"`
	TotalPossible        float64        `db:"total_possible" json:"total_possible"`
	Percentage           float64        `db:"percentage" json:"percentage"`
	Grade                string         `db:"grade" json:"grade"`
	Status               ResultStatus   `db:"status" json:"status"`
	AttendancePercentage float64        `db:"attendance_percentage" json:"attendance_percentage"`
	GeneratedBy          string         `db:"generated_by" json:"generated_by"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}
