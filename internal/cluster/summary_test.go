package cluster

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/storemap-cli/internal/model"
)

func TestSummarize_EmptyMembers(t *testing.T) {
	s := NewSummarizer(nil)
	_, err := s.Summarize(nil, nil, 0)
	assert.True(t, eris.Is(err, ErrInvalidInput))
}

func TestSummarize_IndexMemberMismatch(t *testing.T) {
	s := NewSummarizer(nil)
	_, err := s.Summarize([]model.Store{{ID: "a"}}, []int{0, 1}, 0)
	assert.True(t, eris.Is(err, ErrInvalidInput))
}

func TestSummarize_RadiusFloorForCoincidentMembers(t *testing.T) {
	s := NewSummarizer(nil)
	members := []model.Store{
		{ID: "a", Lat: 40.0, Lon: -75.0, Category: "grocery", Size: model.SizeSmall},
		{ID: "b", Lat: 40.0, Lon: -75.0, Category: "grocery", Size: model.SizeSmall},
		{ID: "c", Lat: 40.0, Lon: -75.0, Category: "grocery", Size: model.SizeSmall},
	}

	sum, err := s.Summarize(members, []int{0, 1, 2}, 0)
	require.NoError(t, err)

	assert.Equal(t, MinRadiusMeters, sum.RadiusMeters)
	assert.InDelta(t, 40.0, sum.CentroidLat, 1e-9)
	assert.InDelta(t, -75.0, sum.CentroidLon, 1e-9)

	// 3 stores in the floored pi*(0.1km)^2 disc: density well above the
	// score cap.
	wantDensity := 3 / (math.Pi * 0.01)
	assert.InDelta(t, wantDensity, sum.DensityPerKm2, 1e-6)
	assert.Equal(t, 100, sum.DensityScore)
}

func TestSummarize_CentroidAndRadius(t *testing.T) {
	s := NewSummarizer(nil)
	// Two stores straddling the centroid north-south, ~2km apart.
	members := []model.Store{
		{ID: "n", Lat: 40.009, Lon: -75.0, Category: "apparel", Size: model.SizeMedium},
		{ID: "s", Lat: 39.991, Lon: -75.0, Category: "apparel", Size: model.SizeMedium},
	}

	sum, err := s.Summarize(members, []int{4, 9}, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.ID)
	assert.InDelta(t, 40.0, sum.CentroidLat, 1e-9)
	// Each member is ~1km from the centroid.
	assert.InDelta(t, 1000, sum.RadiusMeters, 10)
	assert.Equal(t, []int{4, 9}, sum.MemberIndices)
}

func TestSummarize_DensityScoreMidRange(t *testing.T) {
	s := NewSummarizer(nil)
	// Two stores ~4km apart: radius ~2km, area ~12.57 km2,
	// density ~0.159, score round(1.59) = 2.
	members := []model.Store{
		{ID: "a", Lat: 40.018, Lon: -75.0, Category: "grocery", Size: model.SizeLarge},
		{ID: "b", Lat: 39.982, Lon: -75.0, Category: "grocery", Size: model.SizeLarge},
	}

	sum, err := s.Summarize(members, []int{0, 1}, 0)
	require.NoError(t, err)

	area := math.Pi * (sum.RadiusMeters / 1000) * (sum.RadiusMeters / 1000)
	assert.InDelta(t, 2/area, sum.DensityPerKm2, 1e-9)
	assert.Equal(t, int(math.Round(math.Min(100, sum.DensityPerKm2*10))), sum.DensityScore)
	assert.Equal(t, 2, sum.DensityScore)
}

func TestSummarize_Breakdowns(t *testing.T) {
	s := NewSummarizer(nil)
	members := []model.Store{
		{ID: "1", Lat: 40, Lon: -75, Category: "grocery", Size: model.SizeSmall},
		{ID: "2", Lat: 40, Lon: -75, Category: "apparel", Size: model.SizeLarge},
		{ID: "3", Lat: 40, Lon: -75, Category: "grocery", Size: model.SizeSmall},
		{ID: "4", Lat: 40, Lon: -75, Category: "pharmacy", Size: model.SizeSmall},
		{ID: "5", Lat: 40, Lon: -75, Category: "grocery", Size: model.SizeMedium},
	}

	sum, err := s.Summarize(members, []int{0, 1, 2, 3, 4}, 0)
	require.NoError(t, err)

	// First-seen label order.
	assert.Equal(t, []model.LabelCount{
		{Label: "grocery", Count: 3},
		{Label: "apparel", Count: 1},
		{Label: "pharmacy", Count: 1},
	}, sum.CategoryBreakdown)
	assert.Equal(t, []model.LabelCount{
		{Label: "small", Count: 3},
		{Label: "large", Count: 1},
		{Label: "medium", Count: 1},
	}, sum.SizeBreakdown)

	assert.Equal(t, 3, sum.CategoryCount("grocery"))
	assert.Equal(t, 1, sum.CategoryCount("pharmacy"))
	assert.Equal(t, 0, sum.CategoryCount("hardware"))
	assert.Equal(t, 3, sum.SizeCount("small"))
	assert.Equal(t, 0, sum.SizeCount("unknown"))

	// Breakdown sums always equal the store count.
	catTotal, sizeTotal := 0, 0
	for _, lc := range sum.CategoryBreakdown {
		catTotal += lc.Count
	}
	for _, lc := range sum.SizeBreakdown {
		sizeTotal += lc.Count
	}
	assert.Equal(t, sum.StoreCount, catTotal)
	assert.Equal(t, sum.StoreCount, sizeTotal)
}

func TestSummarize_Deterministic(t *testing.T) {
	s := NewSummarizer(nil)
	members := []model.Store{
		{ID: "1", Lat: 40.001, Lon: -75.002, Category: "grocery", Size: model.SizeSmall},
		{ID: "2", Lat: 40.003, Lon: -75.001, Category: "apparel", Size: model.SizeLarge},
		{ID: "3", Lat: 40.002, Lon: -75.003, Category: "grocery", Size: model.SizeMedium},
	}

	first, err := s.Summarize(members, []int{0, 1, 2}, 7)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Summarize(members, []int{0, 1, 2}, 7)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
