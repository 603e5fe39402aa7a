package models

import (
	"database/sql/driver"
	"time"
)

// ExamType classifies the assessment event a grade was recorded for.
type ExamType string

const (
	ExamTypeQuiz       ExamType = "quiz"
	ExamTypeAssignment ExamType = "assignment"
	ExamTypeMidterm    ExamType = "midterm"
	ExamTypeFinal      ExamType = "final"
	ExamTypeProject    ExamType = "project"
)

// GradeRecord is one assessment event for a learner in a subject. Grade is
// the letter derived from Marks/TotalMarks and is recomputed whenever either changes.
type GradeRecord struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	ExamType     ExamType  `db:"exam_type" json:"exam_type"`
	Marks        float64   `db:"marks" json:"marks"`
	TotalMarks   float64   `db:"total_marks" json:"total_marks"`
	Grade        string    `db:"grade" json:"grade"`
	Term         string    `db:"term" json:"term"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Date         time.Time `db:"date" json:"date"`
	GradedBy     string    `db:"graded_by" json:"graded_by"`
	Remarks      *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter scopes grade listing queries.
type GradeFilter struct {
	StudentID    string
	SubjectID    string
	Term         string
	AcademicYear string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// SubjectGradeStats is the per-subject bucket of GradeStats.
type SubjectGradeStats struct {
	Average float64  `json:"average"`
	Grades  []string `json:"grades"`
	Count   int      `json:"count"`
}

// GradeStats summarises grade records with unweighted averages, keyed by subject display name.
type GradeStats struct {
	TotalRecords      int                          `json:"totalRecords"`
	AveragePercentage float64                      `json:"averagePercentage"`
	SubjectWise       map[string]SubjectGradeStats `json:"subjectWise"`
}

// Value marshals the snapshot for a JSONB column.
func (s GradeStats) Value() (driver.Value, error) {
	if s.SubjectWise == nil {
		s.SubjectWise = map[string]SubjectGradeStats{}
	}
	return jsonValue(s)
}

// Scan unmarshals the JSONB column.
func (s *GradeStats) Scan(value interface{}) error {
	return scanJSON(value, s)
}
