package models

import (
	"database/sql/driver"
	"time"
)

// Question is one multiple-choice item. CorrectOption is a zero-based index into Options.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Points        float64  `json:"points"`
}

// Questions is the ordered question list stored as JSONB on an exam.
type Questions []Question

// Value marshals the questions for persistence.
func (q Questions) Value() (driver.Value, error) {
	if q == nil {
		q = Questions{}
	}
	return jsonValue(q)
}

// Scan unmarshals the JSONB column.
func (q *Questions) Scan(value interface{}) error {
	return scanJSON(value, q)
}

// TotalPoints sums the point values of all questions.
func (q Questions) TotalPoints() float64 {
	var total float64
	for _, question := range q {
		total += question.Points
	}
	return total
}

// WithoutAnswers returns a copy safe to show learners, with every CorrectOption set to -1.
func (q Questions) WithoutAnswers() Questions {
	out := make(Questions, len(q))
	for i, question := range q {
		question.CorrectOption = -1
		out[i] = question
	}
	return out
}

// AnswerSet is the ordered list of selected option indices; index i answers question i.
type AnswerSet []int

// Value marshals the answers for persistence.
func (a AnswerSet) Value() (driver.Value, error) {
	if a == nil {
		a = AnswerSet{}
	}
	return jsonValue(a)
}

// Scan unmarshals the JSONB column.
func (a *AnswerSet) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// Exam is a published or draft multiple-choice exam.
type Exam struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	ClassID         string    `db:"class_id" json:"class_id"`
	Questions       Questions `db:"questions" json:"questions"`
	TotalPoints     float64   `db:"total_points" json:"total_points"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Published       bool      `db:"published" json:"published"`
	CreatedBy       string    `db:"created_by" json:"created_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ExamSubmission is the single scored attempt of a learner on an exam.
type ExamSubmission struct {
	ID          string    `db:"id" json:"id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Answers     AnswerSet `db:"answers" json:"answers"`
	Score       float64   `db:"score" json:"score"`
	TotalPoints float64   `db:"total_points" json:"total_points"`
	Percentage  float64   `db:"percentage" json:"percentage"`
	Grade       string    `db:"grade" json:"grade"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}
