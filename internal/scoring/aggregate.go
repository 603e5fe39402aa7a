package scoring

import (
	"time"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

// AttendanceWindow narrows a record set. Zero values disable a bound.
type AttendanceWindow struct {
	From      *time.Time
	To        *time.Time
	SubjectID string
}

// FilterAttendance keeps records inside the window. Both date bounds are inclusive.
func FilterAttendance(records []models.AttendanceRecord, window AttendanceWindow) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if window.From != nil && r.Date.Before(*window.From) {
			continue
		}
		if window.To != nil && r.Date.After(*window.To) {
			continue
		}
		if window.SubjectID != "" && (r.SubjectID == nil || *r.SubjectID != window.SubjectID) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AggregateAttendance counts records per status. Late counts as attended.
func AggregateAttendance(records []models.AttendanceRecord) models.AttendanceStats {
	stats := models.AttendanceStats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.AttendancePresent:
			stats.Present++
		case models.AttendanceAbsent:
			stats.Absent++
		case models.AttendanceLate:
			stats.Late++
		case models.AttendanceExcused:
			stats.Excused++
		}
	}
	if stats.Total > 0 {
		stats.Percentage = Round2(float64(stats.Present+stats.Late) / float64(stats.Total) * 100)
	}
	return stats
}

// AggregateGrades averages per-record percentages without weighting by marks.
// Buckets are keyed by subject display name, so distinct subjects sharing a
// name are merged.
func AggregateGrades(records []models.GradeRecord) (models.GradeStats, error) {
	stats := models.GradeStats{
		TotalRecords: len(records),
		SubjectWise:  map[string]models.SubjectGradeStats{},
	}
	if len(records) == 0 {
		return stats, nil
	}

	type acc struct {
		sum    float64
		grades []string
	}
	buckets := make(map[string]*acc)
	var total float64

	for _, r := range records {
		pct, err := Percentage(r.Marks, r.TotalMarks)
		if err != nil {
			return models.GradeStats{}, err
		}
		total += pct

		b, ok := buckets[r.SubjectName]
		if !ok {
			b = &acc{}
			buckets[r.SubjectName] = b
		}
		b.sum += pct
		b.grades = append(b.grades, LetterForPercentage(pct))
	}

	stats.AveragePercentage = Round2(total / float64(len(records)))
	for name, b := range buckets {
		stats.SubjectWise[name] = models.SubjectGradeStats{
			Average: Round2(b.sum / float64(len(b.grades))),
			Grades:  b.grades,
			Count:   len(b.grades),
		}
	}
	return stats, nil
}

// CompletionRate fills in AssignmentStats.CompletionRate from its counts.
func CompletionRate(stats models.AssignmentStats) models.AssignmentStats {
	stats.CompletionRate = 0
	if stats.Total > 0 {
		stats.CompletionRate = Round2(float64(stats.Submitted) / float64(stats.Total) * 100)
	}
	return stats
}
