package loader

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/storemap-cli/internal/model"
)

// LoadShapefile reads store records from a point shapefile. Attributes are
// matched case-insensitively: ID (or STOREID), NAME, CATEGORY, SIZE.
// Records without an ID attribute get a positional one. Non-point shapes
// are skipped with a warning.
func LoadShapefile(path string) ([]model.Store, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	idIdx := fieldIndex(reader, "ID")
	if idIdx < 0 {
		idIdx = fieldIndex(reader, "STOREID")
	}
	nameIdx := fieldIndex(reader, "NAME")
	categoryIdx := fieldIndex(reader, "CATEGORY")
	sizeIdx := fieldIndex(reader, "SIZE")

	attr := func(idx int) string {
		if idx < 0 {
			return ""
		}
		return strings.TrimSpace(reader.Attribute(idx))
	}

	var stores []model.Store
	row := 0
	for reader.Next() {
		_, shape := reader.Shape()
		point, ok := shape.(*shp.Point)
		if !ok {
			zap.L().Warn("loader: skipping non-point shape", zap.Int("row", row))
			row++
			continue
		}

		id := attr(idIdx)
		if id == "" {
			id = fmt.Sprintf("shp-%d", row)
		}

		stores = append(stores, model.Store{
			ID:       id,
			Name:     attr(nameIdx),
			Lat:      point.Y,
			Lon:      point.X,
			Category: NormalizeCategory(attr(categoryIdx)),
			Size:     NormalizeSize(attr(sizeIdx)),
		})
		row++
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "loader: read shapefile")
	}
	return stores, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if
// not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
