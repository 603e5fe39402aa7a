package dto

// MarkAttendanceRequest captures POST /attendance and each item of the bulk payload.
type MarkAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	SubjectID *string `json:"subject_id,omitempty"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required,oneof=Present Absent Late Excused"`
	Remarks   *string `json:"remarks,omitempty"`
}

// BulkAttendanceRequest captures POST /attendance/bulk.
type BulkAttendanceRequest struct {
	Records []MarkAttendanceRequest `json:"records" validate:"required,min=1,max=500,dive"`
}

// UpdateAttendanceRequest captures PUT /attendance/:id.
type UpdateAttendanceRequest struct {
	Status  string  `json:"status" validate:"required,oneof=Present Absent Late Excused"`
	Remarks *string `json:"remarks,omitempty"`
}

// AttendanceQuery captures GET /attendance and GET /attendance/stats filters.
type AttendanceQuery struct {
	StudentID string `form:"studentId"`
	SubjectID string `form:"subjectId"`
	From      string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
