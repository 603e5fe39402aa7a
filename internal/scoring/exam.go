package scoring

import (
	"fmt"

	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

// ComputeExamScore sums the points of every question whose answer at the same
// position matches the correct option. Missing, surplus and out-of-range
// answers score zero.
func ComputeExamScore(questions models.Questions, answers models.AnswerSet) float64 {
	n := len(questions)
	if len(answers) < n {
		n = len(answers)
	}
	var score float64
	for i := 0; i < n; i++ {
		if answers[i] == questions[i].CorrectOption {
			score += questions[i].Points
		}
	}
	return score
}

// ComputeExamScoreStrict rejects answer sets longer than the question list and
// indices outside a question's options before scoring.
func ComputeExamScoreStrict(questions models.Questions, answers models.AnswerSet) (float64, error) {
	if len(answers) > len(questions) {
		return 0, appErrors.Clone(appErrors.ErrMalformedAnswer,
			fmt.Sprintf("received %d answers for %d questions", len(answers), len(questions)))
	}
	for i, answer := range answers {
		if answer < 0 || answer >= len(questions[i].Options) {
			return 0, appErrors.Clone(appErrors.ErrMalformedAnswer,
				fmt.Sprintf("answer %d selects option %d outside 0..%d", i+1, answer, len(questions[i].Options)-1))
		}
	}
	return ComputeExamScore(questions, answers), nil
}

// ExamOutcome is a scored submission.
type ExamOutcome struct {
	Score       float64
	TotalPoints float64
	Percentage  float64
	Grade       string
}

// ScoreSubmission scores answers and classifies the percentage against the
// exam's total points.
func ScoreSubmission(questions models.Questions, answers models.AnswerSet, strict bool) (ExamOutcome, error) {
	var (
		score float64
		err   error
	)
	if strict {
		score, err = ComputeExamScoreStrict(questions, answers)
		if err != nil {
			return ExamOutcome{}, err
		}
	} else {
		score = ComputeExamScore(questions, answers)
	}

	total := questions.TotalPoints()
	pct, err := Percentage(score, total)
	if err != nil {
		return ExamOutcome{}, err
	}
	return ExamOutcome{
		Score:       score,
		TotalPoints: total,
		Percentage:  Round2(pct),
		Grade:       LetterForPercentage(pct),
	}, nil
}
