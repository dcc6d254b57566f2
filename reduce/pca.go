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


// Package reduce projects embedding matrices down to low-dimensional
// spaces via principal component analysis.
package reduce

import (
	"errors"
	"math"

	"github.com/poiesic/topical/core"
	"gonum.org/v1/gonum/mat"
)

// ErrNoComponents indicates Params.Components is below 1.
var ErrNoComponents = errors.New("components must be at least 1")

// Params configures a projection. Seed is recorded in stage provenance so
// parameter changes invalidate cached projections; the decomposition
// itself is deterministic.
type Params struct {
	Components int   `json:"components"`
	Seed       int64 `json:"seed"`
}

// Project reduces the matrix to Params.Components dimensions using PCA
// (thin SVD on the column-centered data). Row order is preserved: output
// row i is the projection of input row i. If the input has fewer columns
// or rows than requested components, the projection is truncated to what
// the data supports.
func Project(m core.Matrix, p Params) (core.Matrix, error) {
	if p.Components < 1 {
		return nil, ErrNoComponents
	}

	rows := len(m)
	if rows == 0 {
		return core.Matrix{}, nil
	}
	cols := len(m[0])

	centered := mat.NewDense(rows, cols, nil)
	means := make([]float64, cols)
	for _, row := range m {
		for j, v := range row {
			means[j] += float64(v)
		}
	}
	for j := range means {
		means[j] /= float64(rows)
	}
	for i, row := range m {
		for j, v := range row {
			centered.Set(i, j, float64(v)-means[j])
		}
	}

	k := p.Components
	if k > cols {
		k = cols
	}
	if k > rows {
		k = rows
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}

	var v mat.Dense
	svd.VTo(&v)

	basis := fixSigns(v.Slice(0, cols, 0, k))

	var projected mat.Dense
	projected.Mul(centered, basis)

	out := make(core.Matrix, rows)
	for i := 0; i < rows; i++ {
		row := make([]float32, k)
		for j := 0; j < k; j++ {
			row[j] = float32(projected.At(i, j))
		}
		out[i] = row
	}
	return out, nil
}

// fixSigns flips each component so its largest-magnitude coefficient is
// positive. SVD signs are otherwise arbitrary, and stable signs keep the
// cached projections comparable run to run.
func fixSigns(basis mat.Matrix) mat.Matrix {
	r, c := basis.Dims()
	fixed := mat.DenseCopyOf(basis)
	for j := 0; j < c; j++ {
		maxAbs, maxVal := 0.0, 0.0
		for i := 0; i < r; i++ {
			if a := math.Abs(fixed.At(i, j)); a > maxAbs {
				maxAbs = a
				maxVal = fixed.At(i, j)
			}
		}
		if maxVal < 0 {
			for i := 0; i < r; i++ {
				fixed.Set(i, j, -fixed.At(i, j))
			}
		}
	}
	return fixed
}
