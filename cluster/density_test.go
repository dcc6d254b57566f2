package cluster

import (
	"testing"

	"github.com/poiesic/topical/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDensity_FindsDenseGroups(t *testing.T) {
	m := threeGroups(10)
	labels := Density(m, DensityParams{MinClusterSize: 5, MinSamples: 3})
	require.Len(t, labels, 30)

	for g := 0; g < 3; g++ {
		want := labels[g*10]
		assert.NotEqual(t, core.NoiseLabel, want, "dense group %d must not be noise", g)
		for i := g * 10; i < (g+1)*10; i++ {
			assert.Equal(t, want, labels[i], "group %d must be homogeneous", g)
		}
	}

	// The three groups get three distinct ids.
	assert.NotEqual(t, labels[0], labels[10])
	assert.NotEqual(t, labels[10], labels[20])
}

func TestDensity_SmallClustersDissolveToNoise(t *testing.T) {
	// Two dense groups of 10 plus an isolated outlier far from both.
	m := threeGroups(10)[:20]
	m = append(m, []float32{5000, 5000})

	labels := Density(m, DensityParams{MinClusterSize: 5, MinSamples: 3})
	require.Len(t, labels, 21)
	assert.Equal(t, core.NoiseLabel, labels[20], "outlier must be noise")
}

func TestDensity_NoiseSentinelNeverCollides(t *testing.T) {
	m := threeGroups(10)

	density := Density(m, DensityParams{MinClusterSize: 5, MinSamples: 3})
	partition := KMeans(m, KMeansParams{Seed: 42})
	hierarchical := Agglomerative(m)

	for _, lbl := range partition {
		assert.NotEqual(t, core.NoiseLabel, lbl)
	}
	for _, lbl := range hierarchical {
		assert.NotEqual(t, core.NoiseLabel, lbl)
	}
	for _, lbl := range density {
		if lbl != core.NoiseLabel {
			assert.GreaterOrEqual(t, lbl, 0)
		}
	}
}

func TestDensity_Deterministic(t *testing.T) {
	m := threeGroups(10)
	p := DensityParams{MinClusterSize: 5, MinSamples: 3}
	assert.Equal(t, Density(m, p), Density(m, p))
}

func TestDensity_Empty(t *testing.T) {
	labels := Density(core.Matrix{}, DensityParams{MinClusterSize: 2, MinSamples: 2})
	assert.Empty(t, labels)
}
