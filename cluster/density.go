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
	"sort"

	"github.com/poiesic/topical/core"
)

// DensityParams configures the density-based strategy.
type DensityParams struct {
	// MinClusterSize is the smallest cluster that survives; members of
	// anything smaller are reassigned to the noise sentinel.
	MinClusterSize int `json:"min_cluster_size"`

	// MinSamples is the neighbor count (including the point itself) a
	// point needs inside the neighborhood radius to count as a core point.
	MinSamples int `json:"min_samples"`
}

// Density runs density-based clustering over the matrix. Points that end
// up in no sufficiently dense region receive core.NoiseLabel; all real
// cluster ids are non-negative and dense from 0 in order of discovery.
//
// The neighborhood radius is derived from the data: the median distance to
// each point's MinSamples-th nearest neighbor. This keeps the two exposed
// parameters (MinClusterSize, MinSamples) as the only tuning surface.
func Density(m core.Matrix, params DensityParams) core.Labels {
	n := len(m)
	labels := make(core.Labels, n)
	for i := range labels {
		labels[i] = core.NoiseLabel
	}
	if n == 0 {
		return labels
	}

	minSamples := params.MinSamples
	if minSamples < 1 {
		minSamples = 1
	}
	minClusterSize := params.MinClusterSize
	if minClusterSize < 1 {
		minClusterSize = 1
	}

	data := toFloat64(m)
	eps := neighborhoodRadius(data, minSamples)

	// Neighbor lists within eps (excluding the point itself).
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if euclidean(data[i], data[j]) <= eps {
				neighbors[i] = append(neighbors[i], j)
				neighbors[j] = append(neighbors[j], i)
			}
		}
	}

	isCore := make([]bool, n)
	for i := 0; i < n; i++ {
		isCore[i] = len(neighbors[i])+1 >= minSamples
	}

	// Expand clusters from core points in index order; the scan order makes
	// cluster ids deterministic.
	nextCluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != core.NoiseLabel || !isCore[i] {
			continue
		}

		cluster := nextCluster
		nextCluster++
		labels[i] = cluster

		queue := append([]int{}, neighbors[i]...)
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			if labels[p] != core.NoiseLabel {
				continue
			}
			labels[p] = cluster
			if isCore[p] {
				queue = append(queue, neighbors[p]...)
			}
		}
	}

	dissolveSmallClusters(labels, minClusterSize)
	return labels
}

// neighborhoodRadius estimates eps as the median distance to the k-th
// nearest neighbor across all points.
func neighborhoodRadius(data [][]float64, k int) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}
	if k > n-1 {
		k = n - 1
	}

	kth := make([]float64, 0, n)
	dists := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		dists = dists[:0]
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dists = append(dists, euclidean(data[i], data[j]))
		}
		sort.Float64s(dists)
		kth = append(kth, dists[k-1])
	}
	sort.Float64s(kth)
	return kth[len(kth)/2]
}

// dissolveSmallClusters reassigns members of clusters below the size
// threshold to noise, then renumbers the survivors densely from 0.
func dissolveSmallClusters(labels core.Labels, minSize int) {
	sizes := map[int]int{}
	for _, lbl := range labels {
		if lbl != core.NoiseLabel {
			sizes[lbl]++
		}
	}

	remap := map[int]int{}
	next := 0
	for i, lbl := range labels {
		if lbl == core.NoiseLabel {
			continue
		}
		if sizes[lbl] < minSize {
			labels[i] = core.NoiseLabel
			continue
		}
		if _, ok := remap[lbl]; !ok {
			remap[lbl] = next
			next++
		}
		labels[i] = remap[lbl]
	}
}
