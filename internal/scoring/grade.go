package scoring

import (
	"math"

	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

// Letter grades in descending order.
const (
	LetterAPlus  = "A+"
	LetterA      = "A"
	LetterAMinus = "A-"
	LetterBPlus  = "B+"
	LetterB      = "B"
	LetterBMinus = "B-"
	LetterCPlus  = "C+"
	LetterC      = "C"
	LetterCMinus = "C-"
	LetterD      = "D"
	LetterF      = "F"
)

// PassThreshold is the overall percentage at or above which a result passes.
const PassThreshold = 40.0

type band struct {
	min    float64
	letter string
}

// bands are evaluated from the top; each lower bound is inclusive.
var bands = []band{
	{90, LetterAPlus},
	{85, LetterA},
	{80, LetterAMinus},
	{75, LetterBPlus},
	{70, LetterB},
	{65, LetterBMinus},
	{60, LetterCPlus},
	{55, LetterC},
	{50, LetterCMinus},
	{40, LetterD},
}

// Letters lists every letter ClassifyGrade can return.
func Letters() []string {
	out := make([]string, 0, len(bands)+1)
	for _, b := range bands {
		out = append(out, b.letter)
	}
	return append(out, LetterF)
}

// LetterForPercentage maps a percentage onto its band. Values above 100 stay A+.
func LetterForPercentage(percentage float64) string {
	for _, b := range bands {
		if percentage >= b.min {
			return b.letter
		}
	}
	return LetterF
}

// Percentage returns obtained/possible*100 without rounding.
func Percentage(obtained, possible float64) (float64, error) {
	if possible <= 0 || math.IsNaN(possible) {
		return 0, appErrors.Clone(appErrors.ErrInvalidInput, "total marks must be greater than zero")
	}
	if obtained < 0 || math.IsNaN(obtained) {
		return 0, appErrors.Clone(appErrors.ErrInvalidInput, "marks must not be negative")
	}
	return obtained / possible * 100, nil
}

// ClassifyGrade returns the letter for obtained out of possible marks. The
// percentage is not clamped, so extra credit above possible still grades A+.
func ClassifyGrade(obtained, possible float64) (string, error) {
	pct, err := Percentage(obtained, possible)
	if err != nil {
		return "", err
	}
	return LetterForPercentage(pct), nil
}

// ClassifyGradeStrict behaves like ClassifyGrade but rejects obtained > possible.
func ClassifyGradeStrict(obtained, possible float64) (string, error) {
	if possible > 0 && obtained > possible {
		return "", appErrors.Clone(appErrors.ErrInvalidInput, "marks must not exceed total marks")
	}
	return ClassifyGrade(obtained, possible)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
