package cluster

import "github.com/poiesic/topical/core"

// silhouette computes the mean silhouette coefficient of an assignment.
// Returns ok=false when the score is undefined: fewer than two clusters
// present, or every cluster is a singleton.
func silhouette(data [][]float64, labels core.Labels) (float64, bool) {
	n := len(data)
	if n < 2 {
		return 0, false
	}

	members := map[int][]int{}
	for i, lbl := range labels {
		members[lbl] = append(members[lbl], i)
	}
	if len(members) < 2 {
		return 0, false
	}

	total := 0.0
	counted := 0
	for i := 0; i < n; i++ {
		own := members[labels[i]]
		if len(own) < 2 {
			// Silhouette of a singleton is conventionally 0.
			counted++
			continue
		}

		// Mean intra-cluster distance.
		a := 0.0
		for _, j := range own {
			if j != i {
				a += euclidean(data[i], data[j])
			}
		}
		a /= float64(len(own) - 1)

		// Smallest mean distance to another cluster.
		b := -1.0
		for lbl, idxs := range members {
			if lbl == labels[i] {
				continue
			}
			d := 0.0
			for _, j := range idxs {
				d += euclidean(data[i], data[j])
			}
			d /= float64(len(idxs))
			if b < 0 || d < b {
				b = d
			}
		}

		max := a
		if b > max {
			max = b
		}
		if max > 0 {
			total += (b - a) / max
		}
		counted++
	}

	if counted == 0 {
		return 0, false
	}
	return total / float64(counted), true
}
