package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Result Term 1 2024/2025",
		Summary: []Field{{Label: "Overall", Value: "84.00% (A-)"}, {Label: "Status", Value: "Pass"}},
		Headers: []string{"Subject", "Percentage", "Grade"},
		Rows: []map[string]string{
			{"Subject": "Math", "Percentage": "84.00", "Grade": "A-"},
			{"Subject": "Science", "Percentage": "70.00", "Grade": "B"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Subject,Percentage,Grade", lines[0])
	assert.Equal(t, "Math,84.00,A-", lines[1])
	assert.Equal(t, "Overall,84.00% (A-)", lines[4])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
