package dto

// ExportRequest captures POST /exports.
type ExportRequest struct {
	Type     string `json:"type" validate:"required,oneof=result report"`
	TargetID string `json:"target_id" validate:"required"`
	Format   string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Progress    int     `json:"progress"`
	DownloadURL *string `json:"download_url,omitempty"`
	Error       *string `json:"error,omitempty"`
}
