package cluster

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/storemap-cli/internal/geo"
	"github.com/sells-group/storemap-cli/internal/model"
)

// Result is the output of one pipeline run: cluster summaries in discovery
// order plus the identifiers of stores left as noise.
type Result struct {
	Clusters      []model.ClusterSummary `json:"clusters"`
	NoiseStoreIDs []string               `json:"noise_store_ids"`
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithDistance substitutes the distance metric. Tests use planar metrics;
// production uses the Haversine default.
func WithDistance(dist geo.DistanceFunc) PipelineOption {
	return func(p *Pipeline) {
		p.dist = dist
	}
}

// WithEmptyResult makes Run return an empty Result for an empty store
// slice instead of failing with ErrEmptyInput. Drop-in replacements for
// callers that treat empty input as "zero clusters" want this.
func WithEmptyResult() PipelineOption {
	return func(p *Pipeline) {
		p.allowEmpty = true
	}
}

// WithPipelineWorkers parallelizes the neighborhood precomputation inside
// the clusterer. Output is identical for any worker count.
func WithPipelineWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// Pipeline orchestrates clustering: extract points from store records, run
// the density clusterer, summarize each cluster. It is the only component
// aware of the Store entity; the clusterer and summarizer operate on raw
// points and indices.
//
// A Pipeline is stateless and safe for concurrent use; every Run is an
// independent in-memory computation.
type Pipeline struct {
	dist       geo.DistanceFunc
	workers    int
	allowEmpty bool
}

// NewPipeline creates a Pipeline with the given options.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{dist: geo.Haversine, workers: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run clusters the given stores with neighborhood radius eps (meters) and
// core threshold minPts. On failure no partial result is returned. Every
// store ends up in exactly one cluster or in the noise set.
func (p *Pipeline) Run(stores []model.Store, eps float64, minPts int) (*Result, error) {
	if len(stores) == 0 {
		if p.allowEmpty {
			return &Result{}, nil
		}
		return nil, eris.Wrap(ErrEmptyInput, "pipeline: no stores")
	}

	points := make([]geo.Point, len(stores))
	for i, s := range stores {
		points[i] = geo.Point{Lat: s.Lat, Lon: s.Lon}
	}

	clusters, noise, err := Cluster(points, eps, minPts, p.dist, WithWorkers(p.workers))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: cluster")
	}

	summarizer := NewSummarizer(p.dist)
	result := &Result{
		Clusters:      make([]model.ClusterSummary, 0, len(clusters)),
		NoiseStoreIDs: make([]string, 0, len(noise)),
	}

	for id, indices := range clusters {
		members := make([]model.Store, len(indices))
		for i, idx := range indices {
			members[i] = stores[idx]
		}
		summary, err := summarizer.Summarize(members, indices, id)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: summarize cluster %d", id)
		}
		result.Clusters = append(result.Clusters, summary)
	}

	for _, idx := range noise {
		result.NoiseStoreIDs = append(result.NoiseStoreIDs, stores[idx].ID)
	}

	zap.L().Debug("clustering complete",
		zap.Int("stores", len(stores)),
		zap.Float64("eps_meters", eps),
		zap.Int("min_pts", minPts),
		zap.Int("clusters", len(result.Clusters)),
		zap.Int("noise", len(result.NoiseStoreIDs)),
	)
	return result, nil
}
