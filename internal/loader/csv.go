package loader

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/storemap-cli/internal/model"
)

// Well-known CSV column names. Any other column is carried into Store.Tags.
const (
	colID       = "id"
	colName     = "name"
	colLat      = "lat"
	colLon      = "lon"
	colCategory = "category"
	colSize     = "size"
)

// LoadCSV reads store records from a CSV file with a header row. Required
// columns: id, lat, lon. Optional: name, category, size; remaining columns
// become tags. Rows with unparseable or out-of-range coordinates fail the
// load.
func LoadCSV(path string) ([]model.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open csv %s", path)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses store records from CSV data.
func ReadCSV(r io.Reader) ([]model.Store, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "loader: read csv header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colID, colLat, colLon} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("loader: csv missing required column %q", required)
		}
	}

	var stores []model.Store
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "loader: read csv line %d", line)
		}

		store, err := storeFromRecord(record, cols, header)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: csv line %d", line)
		}
		stores = append(stores, store)
	}
	return stores, nil
}

func storeFromRecord(record []string, cols map[string]int, header []string) (model.Store, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	lat, err := parseCoordinate(field(colLat), -90, 90)
	if err != nil {
		return model.Store{}, eris.Wrap(err, "lat")
	}
	lon, err := parseCoordinate(field(colLon), -180, 180)
	if err != nil {
		return model.Store{}, eris.Wrap(err, "lon")
	}
	id := field(colID)
	if id == "" {
		return model.Store{}, eris.New("empty id")
	}

	store := model.Store{
		ID:       id,
		Name:     field(colName),
		Lat:      lat,
		Lon:      lon,
		Category: NormalizeCategory(field(colCategory)),
		Size:     NormalizeSize(field(colSize)),
	}

	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		switch key {
		case colID, colName, colLat, colLon, colCategory, colSize:
			continue
		}
		if i < len(record) && strings.TrimSpace(record[i]) != "" {
			if store.Tags == nil {
				store.Tags = make(map[string]string)
			}
			store.Tags[key] = strings.TrimSpace(record[i])
		}
	}
	return store, nil
}

func parseCoordinate(raw string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Errorf("invalid coordinate %q", raw)
	}
	if v < min || v > max {
		return 0, eris.Errorf("coordinate %v outside [%v, %v]", v, min, max)
	}
	return v, nil
}
