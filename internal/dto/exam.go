package dto

// QuestionRequest is one question of a new exam.
type QuestionRequest struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
	Points        float64  `json:"points" validate:"gt=0"`
}

// CreateExamRequest captures POST /exams.
type CreateExamRequest struct {
	Title           string            `json:"title" validate:"required,max=200"`
	SubjectID       string            `json:"subject_id" validate:"required"`
	ClassID         string            `json:"class_id" validate:"required"`
	DurationMinutes int               `json:"duration_minutes" validate:"gte=0"`
	Questions       []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// SubmitExamRequest captures POST /exams/:id/submissions.
type SubmitExamRequest struct {
	Answers []int `json:"answers" validate:"required"`
}
