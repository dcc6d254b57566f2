// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cluster

import (
	"math"
	"math/rand"
	"slices"

	"github.com/poiesic/topical/core"
)

// kmeansBaseCandidates is the fixed base set of candidate cluster counts.
// The integer square root of the record count is unioned in at selection
// time.
var kmeansBaseCandidates = []int{5, 8, 10, 12, 15, 20, 25}

const (
	// Restart counts for candidate scoring and for the final, higher
	// solution-quality run of the selected k.
	kmeansScoringRestarts = 10
	kmeansFinalRestarts   = 20

	kmeansMaxIterations = 100

	// worstScore marks a candidate whose scoring failed so it is never
	// selected over a scored candidate.
	worstScore = -1.0
)

// KMeansParams configures the partitioning strategy.
type KMeansParams struct {
	// Seed fixes the centroid initialization so assignments are stable
	// run to run.
	Seed int64 `json:"seed"`
}

// KMeans partitions the matrix with automatic cluster-count selection:
// every viable candidate k is scored by mean silhouette, the best is
// re-run with more restarts, and that assignment is returned. Candidates
// are tried in ascending order and ties keep the earliest (smallest) k.
func KMeans(m core.Matrix, params KMeansParams) core.Labels {
	data := toFloat64(m)
	n := len(data)
	if n == 0 {
		return core.Labels{}
	}

	k := pickK(data, candidatesFor(n), params.Seed)
	if k < 1 {
		// No viable candidate (tiny corpus): everything is one cluster.
		return make(core.Labels, n)
	}

	labels, _ := kmeansRun(data, k, kmeansFinalRestarts, params.Seed)
	return labels
}

// candidatesFor builds the sorted candidate list for n records: the base
// set unioned with isqrt(n), with everything ≤1 or ≥n discarded.
func candidatesFor(n int) []int {
	set := map[int]bool{}
	for _, k := range kmeansBaseCandidates {
		set[k] = true
	}
	set[isqrt(n)] = true

	candidates := []int{}
	for k := range set {
		if k <= 1 || k >= n {
			continue
		}
		candidates = append(candidates, k)
	}
	slices.Sort(candidates)
	return candidates
}

// pickK scores each candidate and returns the best. A candidate whose
// scoring fails (e.g. the partition degenerates to one cluster) gets the
// worst possible score so it is never selected. Strict > comparison keeps
// the earliest candidate on ties. Returns -1 when no candidates exist.
func pickK(data [][]float64, candidates []int, seed int64) int {
	if len(candidates) == 0 {
		return -1
	}

	bestK := candidates[0]
	bestScore := worstScore
	for _, k := range candidates {
		labels, _ := kmeansRun(data, k, kmeansScoringRestarts, seed)
		score, ok := silhouette(data, labels)
		if !ok {
			score = worstScore
		}
		if score > bestScore {
			bestScore = score
			bestK = k
		}
	}
	return bestK
}

// kmeansRun performs Lloyd's algorithm with `restarts` seeded random
// initializations and returns the assignment with the lowest inertia.
func kmeansRun(data [][]float64, k, restarts int, seed int64) (core.Labels, float64) {
	n := len(data)
	if k > n {
		k = n
	}

	var bestLabels core.Labels
	bestInertia := math.Inf(1)

	for attempt := 0; attempt < restarts; attempt++ {
		rng := rand.New(rand.NewSource(seed + int64(attempt)))
		labels, inertia := lloyd(data, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
		}
	}
	return bestLabels, bestInertia
}

func lloyd(data [][]float64, k int, rng *rand.Rand) (core.Labels, float64) {
	n := len(data)
	dim := len(data[0])

	// Initialize centroids on distinct points.
	perm := rng.Perm(n)
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64{}, data[perm[i]]...)
	}

	labels := make(core.Labels, n)
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, point := range data {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := sqDist(point, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, point := range data {
			c := labels[i]
			counts[c]++
			for j, v := range point {
				sums[c][j] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				// Re-seed an empty centroid on a random point.
				centroids[c] = append([]float64{}, data[rng.Intn(n)]...)
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	inertia := 0.0
	for i, point := range data {
		inertia += sqDist(point, centroids[labels[i]])
	}
	return labels, inertia
}
