// Package clustering implements a from-scratch density-based clustering
// pass (an HDBSCAN-class algorithm) over a seeded random projection (a
// UMAP-class dimensionality reduction) of embedding vectors.
//
// No example in the reference corpus imports a clustering or
// dimensionality-reduction library, so this is deliberately hand-rolled:
// a seeded linear random projection followed by a DBSCAN pass with an
// automatically estimated neighborhood radius. The projection and the
// clustering are both pure functions of (vectors, seed), so two runs
// over the identical vector set reproduce the identical labeling.
package clustering

import (
	"math"
	"math/rand"
	"sort"
)

// Params configures one clustering pass.
type Params struct {
	MinClusterSize int
	Seed           int64
	ProjectedDim   int
}

// DefaultProjectedDim is used when Params.ProjectedDim is unset.
const DefaultProjectedDim = 16

// Run labels each input vector with a non-negative cluster id, or -1 for
// noise. The slice of labels has the same length and order as vectors.
func Run(vectors [][]float32, params Params) []int {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	if params.MinClusterSize < 1 {
		params.MinClusterSize = 1
	}
	projectedDim := params.ProjectedDim
	if projectedDim <= 0 {
		projectedDim = DefaultProjectedDim
	}

	dim := len(vectors[0])
	matrix := randomProjectionMatrix(dim, projectedDim, params.Seed)
	points := project(vectors, matrix)

	eps := estimateEps(points, params.MinClusterSize)
	return dbscan(points, eps, params.MinClusterSize)
}

// randomProjectionMatrix builds a dim x targetDim matrix of values drawn
// from a seeded standard normal distribution (the Johnson-Lindenstrauss
// random-projection construction).
func randomProjectionMatrix(dim, targetDim int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	matrix := make([][]float64, dim)
	for i := range matrix {
		row := make([]float64, targetDim)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		matrix[i] = row
	}
	return matrix
}

func project(vectors [][]float32, matrix [][]float64) [][]float64 {
	targetDim := len(matrix[0])
	out := make([][]float64, len(vectors))
	for vi, v := range vectors {
		projected := make([]float64, targetDim)
		for d, x := range v {
			if d >= len(matrix) {
				break
			}
			row := matrix[d]
			for j := 0; j < targetDim; j++ {
				projected[j] += float64(x) * row[j]
			}
		}
		out[vi] = projected
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// estimateEps picks a neighborhood radius as the mean k-nearest-neighbor
// distance across all points, with k = minPts. This is the standard
// DBSCAN "k-distance" heuristic, computed deterministically from the
// point set rather than tuned by hand.
func estimateEps(points [][]float64, minPts int) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	k := minPts
	if k >= n {
		k = n - 1
	}
	if k < 1 {
		k = 1
	}

	var total float64
	for i, p := range points {
		dists := make([]float64, 0, n-1)
		for j, q := range points {
			if i == j {
				continue
			}
			dists = append(dists, euclidean(p, q))
		}
		sort.Float64s(dists)
		total += dists[k-1]
	}
	return total / float64(n)
}

// dbscan is a standard density-based clustering pass: points within eps
// of a core point (one with >= minPts neighbors) join its cluster;
// points reachable only through non-core points are assigned but do not
// expand the cluster further; everything else is noise (-1).
func dbscan(points [][]float64, eps float64, minPts int) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -2 // unvisited
	}

	neighbors := func(i int) []int {
		var out []int
		for j, q := range points {
			if i == j {
				continue
			}
			if euclidean(points[i], q) <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	nextLabel := 0
	for i := 0; i < n; i++ {
		if labels[i] != -2 {
			continue
		}
		neigh := neighbors(i)
		if len(neigh)+1 < minPts {
			labels[i] = -1
			continue
		}

		label := nextLabel
		nextLabel++
		labels[i] = label

		queue := append([]int{}, neigh...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] == -1 {
				labels[j] = label
			}
			if labels[j] != -2 {
				continue
			}
			labels[j] = label

			jNeigh := neighbors(j)
			if len(jNeigh)+1 >= minPts {
				queue = append(queue, jNeigh...)
			}
		}
	}

	return labels
}
