package model

import "time"

// ClusterSummary holds the descriptive statistics for one density cluster.
// It is produced once per pipeline run and read-only afterward.
type ClusterSummary struct {
	ID                int          `json:"id"`
	CentroidLat       float64      `json:"centroid_lat"`
	CentroidLon       float64      `json:"centroid_lon"`
	RadiusMeters      float64      `json:"radius_meters"`
	StoreCount        int          `json:"store_count"`
	DensityPerKm2     float64      `json:"density_per_km2"`
	DensityScore      int          `json:"density_score"`
	CategoryBreakdown []LabelCount `json:"category_breakdown"`
	SizeBreakdown     []LabelCount `json:"size_breakdown"`
	MemberIndices     []int        `json:"member_indices"`
}

// LabelCount is one entry of a frequency breakdown. A slice of LabelCount
// preserves first-seen label order, which map keys would not.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryCount returns the count for a category label, or 0 if absent.
func (c ClusterSummary) CategoryCount(label string) int {
	for _, lc := range c.CategoryBreakdown {
		if lc.Label == label {
			return lc.Count
		}
	}
	return 0
}

// SizeCount returns the count for a size class label, or 0 if absent.
func (c ClusterSummary) SizeCount(label string) int {
	for _, lc := range c.SizeBreakdown {
		if lc.Label == label {
			return lc.Count
		}
	}
	return 0
}

// ClusterRun is a persisted record of one clustering invocation: the
// parameters used, the resulting summaries, and the noise set.
type ClusterRun struct {
	ID            string           `json:"id"`
	Source        string           `json:"source"`
	EpsMeters     float64          `json:"eps_meters"`
	MinPoints     int              `json:"min_points"`
	StoreCount    int              `json:"store_count"`
	Clusters      []ClusterSummary `json:"clusters"`
	NoiseStoreIDs []string         `json:"noise_store_ids"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ClusterCount returns the number of clusters in the run.
func (r ClusterRun) ClusterCount() int { return len(r.Clusters) }

// NoiseCount returns the number of noise stores in the run.
func (r ClusterRun) NoiseCount() int { return len(r.NoiseStoreIDs) }
