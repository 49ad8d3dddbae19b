// Package cluster implements density-based clustering of geographic points
// and per-cluster summary statistics.
package cluster

import (
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/storemap-cli/internal/geo"
)

// Per-point scan state. A point moves unvisited -> noiseCandidate or
// unvisited -> assigned; a noiseCandidate may still be promoted to assigned
// when a later expansion reaches it. Assigned points are never revisited.
const (
	stateUnvisited = iota
	stateNoiseCandidate
	stateAssigned
)

// Option configures a clustering run.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers sets the number of goroutines used for the O(N^2)
// neighborhood precomputation. The expansion phase is always sequential, so
// results do not depend on scheduling.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Cluster partitions points into density-connected groups plus noise using
// DBSCAN with the given neighborhood radius (eps, meters) and core-point
// threshold (minPts, including the point itself).
//
// Cluster ids are assigned in discovery order during an input-order scan,
// so identical input yields identical output. Each returned cluster holds
// its member point indices in ascending order; noise holds the indices of
// points not density-reachable from any core point.
func Cluster(points []geo.Point, eps float64, minPts int, dist geo.DistanceFunc, opts ...Option) (clusters [][]int, noise []int, err error) {
	if eps <= 0 {
		return nil, nil, eris.Wrapf(ErrInvalidParameter, "eps must be positive, got %v", eps)
	}
	if minPts < 1 {
		return nil, nil, eris.Wrapf(ErrInvalidParameter, "minPts must be >= 1, got %d", minPts)
	}
	if len(points) == 0 {
		return nil, nil, eris.Wrap(ErrEmptyInput, "no points to cluster")
	}
	if dist == nil {
		dist = geo.Haversine
	}

	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	n := len(points)
	neighbors := neighborhoods(points, eps, dist, o.workers)
	state := make([]int, n)
	queued := make([]bool, n)

	for i := 0; i < n; i++ {
		if state[i] != stateUnvisited {
			continue
		}
		if len(neighbors[i]) < minPts {
			state[i] = stateNoiseCandidate
			continue
		}

		// i is a core point: start a new cluster and expand through every
		// core-point neighborhood reachable from it.
		for j := range queued {
			queued[j] = false
		}
		queue := make([]int, 0, len(neighbors[i]))
		queue = append(queue, neighbors[i]...)
		for _, q := range queue {
			queued[q] = true
		}

		var members []int
		for head := 0; head < len(queue); head++ {
			q := queue[head]
			if state[q] == stateAssigned {
				// Already owned by an earlier cluster; never reassigned.
				continue
			}
			state[q] = stateAssigned
			members = append(members, q)
			if len(neighbors[q]) >= minPts {
				for _, r := range neighbors[q] {
					if !queued[r] {
						queued[r] = true
						queue = append(queue, r)
					}
				}
			}
		}

		sort.Ints(members)
		clusters = append(clusters, members)
	}

	for i := 0; i < n; i++ {
		if state[i] == stateNoiseCandidate {
			noise = append(noise, i)
		}
	}
	return clusters, noise, nil
}

// neighborhoods returns, for each point, the indices of all points
// (including itself) within eps. Each slice is in ascending index order.
// Workers parallelize only the independent per-point distance scans, so the
// result is identical for any worker count.
func neighborhoods(points []geo.Point, eps float64, dist geo.DistanceFunc, workers int) [][]int {
	n := len(points)
	out := make([][]int, n)

	scan := func(i int) {
		var nb []int
		for j := 0; j < n; j++ {
			if dist(points[i], points[j]) <= eps {
				nb = append(nb, j)
			}
		}
		out[i] = nb
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			scan(i)
		}
		return out
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			scan(i)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
