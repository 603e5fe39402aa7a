package dto

// CreateGradeRequest captures POST /grades.
type CreateGradeRequest struct {
	StudentID    string   `json:"student_id" validate:"required"`
	SubjectID    string   `json:"subject_id" validate:"required"`
	ExamType     string   `json:"exam_type" validate:"required,oneof=quiz assignment midterm final project"`
	Marks        *float64 `json:"marks" validate:"required,gte=0"`
	TotalMarks   float64  `json:"total_marks" validate:"gt=0"`
	Term         string   `json:"term" validate:"required"`
	AcademicYear string   `json:"academic_year" validate:"required"`
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
	Remarks      *string  `json:"remarks,omitempty"`
}

// UpdateGradeRequest captures PUT /grades/:id. Omitted fields keep their value.
type UpdateGradeRequest struct {
	ExamType     *string  `json:"exam_type,omitempty" validate:"omitempty,oneof=quiz assignment midterm final project"`
	Marks        *float64 `json:"marks,omitempty" validate:"omitempty,gte=0"`
	TotalMarks   *float64 `json:"total_marks,omitempty" validate:"omitempty,gt=0"`
	Term         *string  `json:"term,omitempty"`
	AcademicYear *string  `json:"academic_year,omitempty"`
	Date         *string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Remarks      *string  `json:"remarks,omitempty"`
}

// GradeQuery captures GET /grades and GET /grades/stats filters.
type GradeQuery struct {
	StudentID    string `form:"studentId"`
	SubjectID    string `form:"subjectId"`
	Term         string `form:"term"`
	AcademicYear string `form:"academicYear"`
}
