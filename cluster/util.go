package cluster

import (
	"math"

	"github.com/poiesic/topical/core"
	"gonum.org/v1/gonum/floats"
)

// toFloat64 widens a matrix for the numeric routines.
func toFloat64(m core.Matrix) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		wide := make([]float64, len(row))
		for j, v := range row {
			wide[j] = float64(v)
		}
		out[i] = wide
	}
	return out
}

// euclidean returns the L2 distance between two points.
func euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// sqDist returns the squared L2 distance between two points.
func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// isqrt returns the integer square root of n.
func isqrt(n int) int {
	return int(math.Sqrt(float64(n)))
}
