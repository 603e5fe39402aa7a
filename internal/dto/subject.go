package dto

// CreateSubjectRequest captures POST /subjects.
type CreateSubjectRequest struct {
	Code string `json:"code" validate:"required,max=32"`
	Name string `json:"name" validate:"required,max=128"`
}
