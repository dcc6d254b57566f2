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

	"github.com/poiesic/topical/core"
)

const (
	agglomerativeMinClusters = 5
	agglomerativeMaxClusters = 20
)

// AgglomerativeClusterCount derives the fixed cluster count for n records:
// the integer square root bounded to [5, 20] (and never above n).
func AgglomerativeClusterCount(n int) int {
	k := isqrt(n)
	if k < agglomerativeMinClusters {
		k = agglomerativeMinClusters
	}
	if k > agglomerativeMaxClusters {
		k = agglomerativeMaxClusters
	}
	if k > n {
		k = n
	}
	return k
}

// Agglomerative merges clusters bottom-up with Ward linkage (minimizing
// within-cluster variance) until AgglomerativeClusterCount(n) clusters
// remain. Final cluster ids are assigned 0..k-1 in order of each cluster's
// smallest member index, so the output is deterministic.
func Agglomerative(m core.Matrix) core.Labels {
	n := len(m)
	if n == 0 {
		return core.Labels{}
	}
	data := toFloat64(m)
	k := AgglomerativeClusterCount(n)

	// Active clusters tracked by centroid, size, and member set.
	type cl struct {
		centroid []float64
		size     int
		members  []int
	}
	clusters := make([]*cl, n)
	for i, point := range data {
		clusters[i] = &cl{
			centroid: append([]float64{}, point...),
			size:     1,
			members:  []int{i},
		}
	}

	// Ward distance between clusters via the centroid formula:
	// d(A,B) = |A||B|/(|A|+|B|) * ||centroid(A)-centroid(B)||^2
	ward := func(a, b *cl) float64 {
		na, nb := float64(a.size), float64(b.size)
		return na * nb / (na + nb) * sqDist(a.centroid, b.centroid)
	}

	active := len(clusters)
	for active > k {
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			if clusters[i] == nil {
				continue
			}
			for j := i + 1; j < len(clusters); j++ {
				if clusters[j] == nil {
					continue
				}
				if d := ward(clusters[i], clusters[j]); d < best {
					bi, bj, best = i, j, d
				}
			}
		}

		a, b := clusters[bi], clusters[bj]
		merged := &cl{
			centroid: make([]float64, len(a.centroid)),
			size:     a.size + b.size,
			members:  append(a.members, b.members...),
		}
		for d := range merged.centroid {
			merged.centroid[d] = (a.centroid[d]*float64(a.size) + b.centroid[d]*float64(b.size)) / float64(merged.size)
		}
		clusters[bi] = merged
		clusters[bj] = nil
		active--
	}

	// Order surviving clusters by smallest member index for stable ids.
	labels := make(core.Labels, n)
	next := 0
	for _, c := range clusters {
		if c == nil {
			continue
		}
		for _, idx := range c.members {
			labels[idx] = next
		}
		next++
	}
	return labels
}
