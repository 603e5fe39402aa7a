package scoring

import (
	"sort"
	"time"

	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

// ResultInput carries everything ComposeResult needs for one scoring window.
type ResultInput struct {
	StudentID    string
	Term         string
	AcademicYear string
	Grades       []models.GradeRecord
	Attendance   []models.AttendanceRecord
	GeneratedBy  string
}

// ComposeResult sums marks per subject, averages the subject percentages and
// classifies the outcome. Unlike AggregateGrades it weights records within a
// subject by their total marks.
func ComposeResult(in ResultInput) (*models.Result, error) {
	result := &models.Result{
		StudentID:    in.StudentID,
		Term:         in.Term,
		AcademicYear: in.AcademicYear,
		Subjects:     models.SubjectResults{},
		Grade:        LetterF,
		Status:       models.ResultFail,
		GeneratedBy:  in.GeneratedBy,
	}

	type sums struct{ obtained, possible float64 }
	bySubject := make(map[string]*sums)
	for _, g := range in.Grades {
		if g.TotalMarks <= 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, "total marks must be greater than zero")
		}
		if g.Marks < 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, "marks must not be negative")
		}
		s, ok := bySubject[g.SubjectName]
		if !ok {
			s = &sums{}
			bySubject[g.SubjectName] = s
		}
		s.obtained += g.Marks
		s.possible += g.TotalMarks
	}

	names := make([]string, 0, len(bySubject))
	for name := range bySubject {
		names = append(names, name)
	}
	sort.Strings(names)

	var pctSum float64
	for _, name := range names {
		s := bySubject[name]
		pct, err := Percentage(s.obtained, s.possible)
		if err != nil {
			return nil, err
		}
		pctSum += pct
		result.TotalObtained += s.obtained
		result.TotalPossible += s.possible
		result.Subjects = append(result.Subjects, models.SubjectResult{
			Subject:       name,
			MarksObtained: s.obtained,
			TotalMarks:    s.possible,
			Percentage:    Round2(pct),
			Grade:         LetterForPercentage(pct),
		})
	}

	if len(names) > 0 {
		overall := pctSum / float64(len(names))
		result.Percentage = Round2(overall)
		result.Grade = LetterForPercentage(overall)
		if overall >= PassThreshold {
			result.Status = models.ResultPass
		}
	}

	result.AttendancePercentage = attendedShare(in.Attendance)
	return result, nil
}

func attendedShare(records []models.AttendanceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	attended := 0
	for _, r := range records {
		if r.Status.Attended() {
			attended++
		}
	}
	return Round2(float64(attended) / float64(len(records)) * 100)
}

// Commentary is the free text a teacher attaches to a report.
type Commentary struct {
	Comments         string
	Strengths        string
	ImprovementAreas string
}

// ReportInput carries everything ComposeReport needs for one report period.
type ReportInput struct {
	StudentID   string
	Type        models.ReportType
	Period      string
	Grades      []models.GradeRecord
	Attendance  []models.AttendanceRecord
	Assignments models.AssignmentStats
	Commentary  Commentary
	GeneratedBy string
}

// ComposeReport builds an unpublished report from the period's records.
func ComposeReport(in ReportInput) (*models.Report, error) {
	grades, err := AggregateGrades(in.Grades)
	if err != nil {
		return nil, err
	}
	return &models.Report{
		StudentID:        in.StudentID,
		Type:             in.Type,
		Period:           in.Period,
		Attendance:       AggregateAttendance(in.Attendance),
		Grades:           grades,
		Assignments:      CompletionRate(in.Assignments),
		Comments:         in.Commentary.Comments,
		Strengths:        in.Commentary.Strengths,
		ImprovementAreas: in.Commentary.ImprovementAreas,
		Published:        false,
		GeneratedBy:      in.GeneratedBy,
	}, nil
}

// Publish marks a draft report as published. Published reports cannot be
// published again or reverted.
func Publish(report *models.Report, at time.Time) error {
	if report == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	if report.Published {
		return appErrors.Clone(appErrors.ErrConflict, "report already published")
	}
	at = at.UTC()
	report.Published = true
	report.PublishedAt = &at
	return nil
}
