package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Job", "When", "Reference"},
		Rows: []map[string]string{
			{"Job": "Backend Intern", "When": "2024-05-01 10:00", "Reference": "Room 4"},
			{"Job": "Data Analyst", "When": "2024-05-02 14:30"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Job,When,Reference\nBackend Intern,2024-05-01 10:00,Room 4\nData Analyst,2024-05-02 14:30,\n", string(out))
}

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Reference"},
		Rows: []map[string]string{
			{"Reference": "=HYPERLINK(\"http://evil\")"},
			{"Reference": "@SUM(A1)"},
			{"Reference": "https://meet.example.com/abc"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Reference\n\"'=HYPERLINK(\"\"http://evil\"\")\"\n'@SUM(A1)\nhttps://meet.example.com/abc\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Interview schedule", "generated for testing")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
