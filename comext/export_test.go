package comext

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	table := normalize(t, sampleCSV)

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(table, &buf))

	wb, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer wb.Close()

	const sheet = "Canonical Table"
	rows, err := wb.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, len(table.Facts)+1)

	assert.Equal(t, []string{"reporter", "partner", "product", "indicators", "time_period", "obs_value"}, rows[0])
	assert.Equal(t, "DE", rows[1][0])
	assert.Equal(t, "440711", rows[1][2])
}

func TestExportXLSXEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	err := ExportXLSX(&Table{}, &buf)
	assert.Error(t, err)
}
