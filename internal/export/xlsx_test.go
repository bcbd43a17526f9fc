package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/maxviazov/query-explorer/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	tbl := model.ResultTable{
		Name:    "cities",
		Columns: []string{"id", "city"},
		Rows:    [][]string{{"1", "Oslo"}, {"2", "Lima"}, {"3", "Pune"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, tbl))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "city"}, {"1", "Oslo"}, {"2", "Lima"}, {"3", "Pune"}}, rows)

	// numbers stay text, as stored
	v, err := f.GetCellValue(SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestWriteXLSX_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, model.ResultTable{Name: "empty", Columns: []string{"a"}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}}, rows)
}

func TestAttachmentDisposition(t *testing.T) {
	assert.Equal(t, "attachment; filename=sales.xlsx", AttachmentDisposition(XLSXFilename("sales")))
	assert.Equal(t, `attachment; filename="q 1.xlsx"`, AttachmentDisposition(XLSXFilename("q 1")))
	assert.Equal(t, "attachment; filename*=utf-8''%C3%A9t%C3%A9.xlsx", AttachmentDisposition(XLSXFilename("été")))
}
