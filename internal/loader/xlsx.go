package loader

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/storemap-cli/internal/model"
)

// LoadXLSX reads store records from the named sheet of an XLSX workbook
// (first sheet when sheetName is empty). Column layout matches LoadCSV:
// header row with id/lat/lon required.
func LoadXLSX(path, sheetName string) ([]model.Store, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open xlsx %s", path)
	}

	sheet, err := pickSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("loader: xlsx sheet %q is empty", sheet.Name)
	}

	header := rowToStrings(sheet.Rows[0])
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colID, colLat, colLon} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("loader: xlsx missing required column %q", required)
		}
	}

	var stores []model.Store
	for i, row := range sheet.Rows[1:] {
		record := rowToStrings(row)
		if allEmpty(record) {
			continue
		}
		store, err := storeFromRecord(record, cols, header)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: xlsx row %d", i+2)
		}
		stores = append(stores, store)
	}
	return stores, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name == "" {
		if len(f.Sheets) == 0 {
			return nil, eris.New("loader: xlsx has no sheets")
		}
		return f.Sheets[0], nil
	}
	sheet, ok := f.Sheet[name]
	if !ok {
		return nil, eris.Errorf("loader: xlsx sheet %q not found", name)
	}
	return sheet, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

func allEmpty(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
