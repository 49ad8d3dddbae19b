package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/storemap-cli/internal/model"
)

func writeTestWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Stores")
	require.NoError(t, err)
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}

	path := filepath.Join(t.TempDir(), "stores.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadXLSX_Basic(t *testing.T) {
	path := writeTestWorkbook(t, [][]string{
		{"id", "name", "lat", "lon", "category", "size"},
		{"s1", "Downtown", "40.7128", "-74.0060", "Grocery", "small"},
		{"s2", "Mall", "40.7138", "-74.0070", "Apparel", "medium"},
	})

	stores, err := LoadXLSX(path, "")
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "s1", stores[0].ID)
	assert.Equal(t, "grocery", stores[0].Category)
	assert.Equal(t, model.SizeMedium, stores[1].Size)
}

func TestLoadXLSX_NamedSheet(t *testing.T) {
	path := writeTestWorkbook(t, [][]string{
		{"id", "lat", "lon"},
		{"s1", "40.0", "-75.0"},
	})

	stores, err := LoadXLSX(path, "Stores")
	require.NoError(t, err)
	assert.Len(t, stores, 1)

	_, err = LoadXLSX(path, "Nope")
	assert.Error(t, err)
}

func TestLoadXLSX_SkipsBlankRows(t *testing.T) {
	path := writeTestWorkbook(t, [][]string{
		{"id", "lat", "lon"},
		{"s1", "40.0", "-75.0"},
		{"", "", ""},
		{"s2", "41.0", "-75.0"},
	})

	stores, err := LoadXLSX(path, "")
	require.NoError(t, err)
	assert.Len(t, stores, 2)
}

func TestLoadXLSX_MissingColumn(t *testing.T) {
	path := writeTestWorkbook(t, [][]string{
		{"id", "lat"},
		{"s1", "40.0"},
	})

	_, err := LoadXLSX(path, "")
	assert.Error(t, err)
}

func TestLoadXLSX_MissingFile(t *testing.T) {
	_, err := LoadXLSX(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	assert.Error(t, err)
}
