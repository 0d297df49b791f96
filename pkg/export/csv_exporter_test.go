package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data := Dataset{
		Headers: []string{"student", "status", "amount"},
		Rows: [][]string{
			{"Ana Pérez", "pre-enrolled", "150000"},
			{"Luis Rojas", "pre-enrolled"},
		},
	}

	out, err := exporter.Render(data)
	require.NoError(t, err)
	assert.Equal(t, "student,status,amount\nAna Pérez,pre-enrolled,150000\nLuis Rojas,pre-enrolled,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}
