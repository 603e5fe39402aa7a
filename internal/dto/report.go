package dto

// GenerateReportRequest captures POST /reports.
type GenerateReportRequest struct {
	StudentID        string `json:"student_id" validate:"required"`
	Type             string `json:"type" validate:"required,oneof=weekly monthly term annual"`
	Period           string `json:"period" validate:"required,max=64"`
	From             string `json:"from" validate:"required,datetime=2006-01-02"`
	To               string `json:"to" validate:"required,datetime=2006-01-02"`
	Comments         string `json:"comments" validate:"max=4000"`
	Strengths        string `json:"strengths" validate:"max=4000"`
	ImprovementAreas string `json:"improvement_areas" validate:"max=4000"`
}
