// Package export serializes clustering results for downstream consumers.
package export

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/storemap-cli/internal/cluster"
	"github.com/sells-group/storemap-cli/internal/loader"
	"github.com/sells-group/storemap-cli/internal/model"
)

// FeatureCollection converts a clustering result to a GeoJSON
// FeatureCollection: one point feature per cluster centroid carrying the
// summary statistics, plus one per noise store when the source stores are
// provided for coordinate lookup. Map viewers consume this directly.
func FeatureCollection(result *cluster.Result, stores []model.Store) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}

	for _, c := range result.Clusters {
		fc.Features = append(fc.Features, clusterFeature(c))
	}

	if len(stores) == 0 {
		return fc
	}
	byID := make(map[string]model.Store, len(stores))
	for _, s := range stores {
		byID[s.ID] = s
	}
	for _, id := range result.NoiseStoreIDs {
		s, ok := byID[id]
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       "noise-" + id,
			Geometry: geom.NewPointFlat(geom.XY, []float64{s.Lon, s.Lat}).SetSRID(4326),
			Properties: map[string]interface{}{
				"kind":     "noise",
				"store_id": id,
				"category": s.Category,
				"size":     string(s.Size),
			},
		})
	}
	return fc
}

// RunFeatureCollection converts a persisted run to GeoJSON. Noise stores
// are omitted because a run records only their identifiers.
func RunFeatureCollection(run model.ClusterRun) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for _, c := range run.Clusters {
		fc.Features = append(fc.Features, clusterFeature(c))
	}
	return fc
}

func clusterFeature(c model.ClusterSummary) *geojson.Feature {
	return &geojson.Feature{
		ID:       "cluster-" + strconv.Itoa(c.ID),
		Geometry: geom.NewPointFlat(geom.XY, []float64{c.CentroidLon, c.CentroidLat}).SetSRID(4326),
		Properties: map[string]interface{}{
			"kind":               "cluster",
			"cluster_id":         c.ID,
			"store_count":        c.StoreCount,
			"radius_meters":      c.RadiusMeters,
			"density_per_km2":    c.DensityPerKm2,
			"density_score":      c.DensityScore,
			"top_category":       topCategory(c.CategoryBreakdown),
			"category_breakdown": breakdownMap(c.CategoryBreakdown),
			"size_breakdown":     breakdownMap(c.SizeBreakdown),
		},
	}
}

// topCategory returns a display label for the most common category, with
// first-seen order breaking ties.
func topCategory(counts []model.LabelCount) string {
	best := ""
	bestCount := 0
	for _, lc := range counts {
		if lc.Count > bestCount && lc.Label != "" {
			best, bestCount = lc.Label, lc.Count
		}
	}
	return loader.Title(best)
}

func breakdownMap(counts []model.LabelCount) map[string]int {
	m := make(map[string]int, len(counts))
	for _, lc := range counts {
		m[lc.Label] = lc.Count
	}
	return m
}

// WriteGeoJSON writes the feature collection as indented JSON.
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	return nil
}

// WriteJSON writes a clustering result as indented JSON for piping into
// other tools.
func WriteJSON(w io.Writer, result *cluster.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return eris.Wrap(err, "export: encode result")
	}
	return nil
}
