package dto

// ComposeResultRequest captures POST /results/compose. From/To narrow the
// attendance window; grades are selected by term and academic year.
type ComposeResultRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	Term         string `json:"term" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	From         string `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To           string `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ResultQuery captures GET /results/:studentId.
type ResultQuery struct {
	Term         string `form:"term" validate:"required"`
	AcademicYear string `form:"academicYear" validate:"required"`
}
