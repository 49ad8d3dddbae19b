package cluster

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/storemap-cli/internal/geo"
	"github.com/sells-group/storemap-cli/internal/model"
)

// Summary policy constants.
const (
	// MinRadiusMeters floors the bounding radius so coincident or
	// near-coincident members never produce a degenerate zero-area cluster.
	MinRadiusMeters = 100.0

	// minAreaKm2 floors the density denominator.
	minAreaKm2 = 0.0001

	// densityScale and densityScoreCap normalize stores-per-km2 into the
	// 0-100 presentation score.
	densityScale    = 10.0
	densityScoreCap = 100.0
)

// Summarizer computes descriptive statistics for one cluster's members.
type Summarizer struct {
	dist geo.DistanceFunc
}

// NewSummarizer returns a Summarizer using the given distance metric, or
// Haversine when dist is nil.
func NewSummarizer(dist geo.DistanceFunc) *Summarizer {
	if dist == nil {
		dist = geo.Haversine
	}
	return &Summarizer{dist: dist}
}

// Summarize computes the ClusterSummary for the given member stores.
// indices are the members' positions in the original store slice and must
// be parallel to members. A cluster is never empty by construction of the
// clusterer, so an empty member list is an invariant violation.
func (s *Summarizer) Summarize(members []model.Store, indices []int, id int) (model.ClusterSummary, error) {
	if len(members) == 0 {
		return model.ClusterSummary{}, eris.Wrapf(ErrInvalidInput, "cluster %d has no members", id)
	}
	if len(indices) != len(members) {
		return model.ClusterSummary{}, eris.Wrapf(ErrInvalidInput,
			"cluster %d: %d indices for %d members", id, len(indices), len(members))
	}

	// Planar mean of the degree values. Not a true spherical centroid, but
	// indistinguishable from one at sub-10km cluster scale.
	var sumLat, sumLon float64
	for _, m := range members {
		sumLat += m.Lat
		sumLon += m.Lon
	}
	centroid := geo.Point{
		Lat: sumLat / float64(len(members)),
		Lon: sumLon / float64(len(members)),
	}

	radius := MinRadiusMeters
	for _, m := range members {
		if d := s.dist(centroid, geo.Point{Lat: m.Lat, Lon: m.Lon}); d > radius {
			radius = d
		}
	}

	areaKm2 := math.Pi * (radius / 1000) * (radius / 1000)
	density := float64(len(members)) / math.Max(areaKm2, minAreaKm2)
	score := int(math.Round(math.Min(densityScoreCap, density*densityScale)))

	return model.ClusterSummary{
		ID:                id,
		CentroidLat:       centroid.Lat,
		CentroidLon:       centroid.Lon,
		RadiusMeters:      radius,
		StoreCount:        len(members),
		DensityPerKm2:     density,
		DensityScore:      score,
		CategoryBreakdown: breakdown(members, func(m model.Store) string { return m.Category }),
		SizeBreakdown:     breakdown(members, func(m model.Store) string { return string(m.Size) }),
		MemberIndices:     append([]int(nil), indices...),
	}, nil
}

// breakdown counts label frequencies, preserving first-seen label order.
func breakdown(members []model.Store, label func(model.Store) string) []model.LabelCount {
	pos := make(map[string]int, len(members))
	var counts []model.LabelCount
	for _, m := range members {
		l := label(m)
		if i, ok := pos[l]; ok {
			counts[i].Count++
			continue
		}
		pos[l] = len(counts)
		counts = append(counts, model.LabelCount{Label: l, Count: 1})
	}
	return counts
}
