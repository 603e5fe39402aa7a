package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

func TestLetterForPercentageThresholds(t *testing.T) {
	cases := []struct {
		pct    float64
		letter string
	}{
		{100, LetterAPlus},
		{90, LetterAPlus},
		{89.99, LetterA},
		{85, LetterA},
		{84.99, LetterAMinus},
		{80, LetterAMinus},
		{75, LetterBPlus},
		{74.99, LetterB},
		{70, LetterB},
		{65, LetterBMinus},
		{60, LetterCPlus},
		{55, LetterC},
		{50, LetterCMinus},
		{49.99, LetterD},
		{40, LetterD},
		{39.99, LetterF},
		{0, LetterF},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.letter, LetterForPercentage(tc.pct), "percentage %.2f", tc.pct)
	}
}

func TestClassifyGradeEveryMarkMapsToBand(t *testing.T) {
	letters := Letters()
	require.Len(t, letters, 11)

	for obtained := 0.0; obtained <= 120; obtained++ {
		letter, err := ClassifyGrade(obtained, 120)
		require.NoError(t, err)
		assert.Contains(t, letters, letter)
		assert.Equal(t, LetterForPercentage(obtained/120*100), letter)
	}
}

func TestClassifyGradeScenario(t *testing.T) {
	letter, err := ClassifyGrade(42, 50)
	require.NoError(t, err)
	assert.Equal(t, LetterAMinus, letter)

	pct, err := Percentage(42, 50)
	require.NoError(t, err)
	assert.Equal(t, 84.0, Round2(pct))
}

func TestClassifyGradeRejectsZeroTotal(t *testing.T) {
	for _, obtained := range []float64{0, 1, 50, -3} {
		_, err := ClassifyGrade(obtained, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "total marks must be greater than zero")
	}

	_, err := ClassifyGrade(10, -5)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}

func TestClassifyGradeRejectsNegativeMarks(t *testing.T) {
	_, err := ClassifyGrade(-1, 10)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}

func TestClassifyGradeDoesNotClamp(t *testing.T) {
	letter, err := ClassifyGrade(60, 50)
	require.NoError(t, err)
	assert.Equal(t, LetterAPlus, letter)

	_, err = ClassifyGradeStrict(60, 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	letter, err = ClassifyGradeStrict(50, 50)
	require.NoError(t, err)
	assert.Equal(t, LetterAPlus, letter)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 12.35, Round2(12.345000001))
	assert.Equal(t, 0.0, Round2(0))
}
