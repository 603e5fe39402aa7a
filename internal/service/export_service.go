package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/export"
	"github.com/noah-isme/sma-academic-api/pkg/storage"
)

type resultLoader interface {
	FindByID(ctx context.Context, id string) (*models.Result, error)
}

type reportLoader interface {
	FindByID(ctx context.Context, id string) (*models.Report, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders result and report documents and stores them behind signed URLs.
type ExportService struct {
	results resultLoader
	reports reportLoader
	storage fileStorage
	csv     datasetRenderer
	pdf     datasetRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export defaults.
func NewExportService(results resultLoader, reports reportLoader, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		results: results,
		reports: reports,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the job's target, stores the file and signs a download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Debug("export rendered", zap.String("job_id", job.ID), zap.String("path", relPath))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, or the configured ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", job.Type, sanitizeFilename(job.Params.TargetID), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ExportTypeResult:
		result, err := s.results.FindByID(ctx, job.Params.TargetID)
		if err != nil {
			return export.Dataset{}, err
		}
		return resultDataset(result), nil
	case models.ExportTypeReport:
		report, err := s.reports.FindByID(ctx, job.Params.TargetID)
		if err != nil {
			return export.Dataset{}, err
		}
		return reportDataset(report), nil
	default:
		return export.Dataset{}, fmt.Errorf("unsupported export type %s", job.Type)
	}
}

var resultHeaders = []string{"Subject", "Marks Obtained", "Total Marks", "Percentage", "Grade"}

func resultDataset(result *models.Result) export.Dataset {
	rows := make([]map[string]string, 0, len(result.Subjects))
	for _, subject := range result.Subjects {
		rows = append(rows, map[string]string{
			"Subject":        subject.Subject,
			"Marks Obtained": formatFloat(subject.MarksObtained),
			"Total Marks":    formatFloat(subject.TotalMarks),
			"Percentage":     formatFloat(subject.Percentage),
			"Grade":          subject.Grade,
		})
	}
	return export.Dataset{
		Title: fmt.Sprintf("Result %s %s", result.Term, result.AcademicYear),
		Summary: []export.Field{
			{Label: "Student", Value: result.StudentID},
			{Label: "Total", Value: fmt.Sprintf("%s / %s", formatFloat(result.TotalObtained), formatFloat(result.TotalPossible))},
			{Label: "Percentage", Value: formatFloat(result.Percentage)},
			{Label: "Grade", Value: result.Grade},
			{Label: "Status", Value: string(result.Status)},
			{Label: "Attendance (%)", Value: formatFloat(result.AttendancePercentage)},
		},
		Headers: resultHeaders,
		Rows:    rows,
	}
}

var reportHeaders = []string{"Subject", "Average", "Count"}

func reportDataset(report *models.Report) export.Dataset {
	subjects := make([]string, 0, len(report.Grades.SubjectWise))
	for name := range report.Grades.SubjectWise {
		subjects = append(subjects, name)
	}
	sort.Strings(subjects)

	rows := make([]map[string]string, 0, len(subjects))
	for _, name := range subjects {
		stats := report.Grades.SubjectWise[name]
		rows = append(rows, map[string]string{
			"Subject": name,
			"Average": formatFloat(stats.Average),
			"Count":   strconv.Itoa(stats.Count),
		})
	}

	attendance := report.Attendance
	assignments := report.Assignments
	return export.Dataset{
		Title: fmt.Sprintf("Progress Report %s %s", report.Type, report.Period),
		Summary: []export.Field{
			{Label: "Student", Value: report.StudentID},
			{Label: "Average (%)", Value: formatFloat(report.Grades.AveragePercentage)},
			{Label: "Attendance (%)", Value: formatFloat(attendance.Percentage)},
			{Label: "Days", Value: fmt.Sprintf("%d present, %d absent, %d late, %d excused", attendance.Present, attendance.Absent, attendance.Late, attendance.Excused)},
			{Label: "Assignments", Value: fmt.Sprintf("%d/%d submitted, %d graded", assignments.Submitted, assignments.Total, assignments.Graded)},
			{Label: "Comments", Value: report.Comments},
			{Label: "Strengths", Value: report.Strengths},
			{Label: "Improvement Areas", Value: report.ImprovementAreas},
		},
		Headers: reportHeaders,
		Rows:    rows,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
