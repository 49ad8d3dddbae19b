package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/storemap-cli/internal/cluster"
	"github.com/sells-group/storemap-cli/internal/model"
)

func sampleResult() *cluster.Result {
	return &cluster.Result{
		Clusters: []model.ClusterSummary{
			{
				ID:            0,
				CentroidLat:   40.71,
				CentroidLon:   -74.0,
				RadiusMeters:  250,
				StoreCount:    4,
				DensityPerKm2: 20.4,
				DensityScore:  100,
				CategoryBreakdown: []model.LabelCount{
					{Label: "grocery", Count: 3},
					{Label: "apparel", Count: 1},
				},
				SizeBreakdown: []model.LabelCount{
					{Label: "small", Count: 4},
				},
				MemberIndices: []int{0, 1, 2, 3},
			},
		},
		NoiseStoreIDs: []string{"lone"},
	}
}

func TestFeatureCollection(t *testing.T) {
	stores := []model.Store{
		{ID: "lone", Lat: 41.0, Lon: -75.0, Category: "pharmacy", Size: model.SizeLarge},
	}

	fc := FeatureCollection(sampleResult(), stores)
	require.Len(t, fc.Features, 2)

	clusterFeat := fc.Features[0]
	assert.Equal(t, "cluster-0", clusterFeat.ID)
	assert.Equal(t, "cluster", clusterFeat.Properties["kind"])
	assert.Equal(t, 4, clusterFeat.Properties["store_count"])
	assert.Equal(t, "Grocery", clusterFeat.Properties["top_category"])
	assert.Equal(t, map[string]int{"grocery": 3, "apparel": 1}, clusterFeat.Properties["category_breakdown"])
	assert.Equal(t, []float64{-74.0, 40.71}, clusterFeat.Geometry.FlatCoords())

	noiseFeat := fc.Features[1]
	assert.Equal(t, "noise-lone", noiseFeat.ID)
	assert.Equal(t, "noise", noiseFeat.Properties["kind"])
	assert.Equal(t, []float64{-75.0, 41.0}, noiseFeat.Geometry.FlatCoords())
}

func TestFeatureCollection_NoStoresSkipsNoise(t *testing.T) {
	fc := FeatureCollection(sampleResult(), nil)
	assert.Len(t, fc.Features, 1)
}

func TestRunFeatureCollection(t *testing.T) {
	run := model.ClusterRun{
		ID:            "r1",
		Clusters:      sampleResult().Clusters,
		NoiseStoreIDs: []string{"lone"},
	}
	fc := RunFeatureCollection(run)
	assert.Len(t, fc.Features, 1)
}

func TestWriteGeoJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, FeatureCollection(sampleResult(), nil)))

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 1)
	assert.Equal(t, "Point", decoded.Features[0].Geometry.Type)
	assert.Equal(t, []float64{-74.0, 40.71}, decoded.Features[0].Geometry.Coordinates)
	assert.EqualValues(t, 100, decoded.Features[0].Properties["density_score"])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var decoded cluster.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *sampleResult(), decoded)
}
