package cluster

import (
	"testing"

	"github.com/poiesic/topical/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgglomerativeClusterCount(t *testing.T) {
	assert.Equal(t, 5, AgglomerativeClusterCount(30), "bounded below by 5")
	assert.Equal(t, 10, AgglomerativeClusterCount(100))
	assert.Equal(t, 20, AgglomerativeClusterCount(100000), "bounded above by 20")
	assert.Equal(t, 4, AgglomerativeClusterCount(4), "never more clusters than points")
}

func TestAgglomerative_GroupsNeverMergeAcross(t *testing.T) {
	// 30 points, k = 5: groups may split but two far-apart groups must
	// never share a cluster under Ward linkage.
	m := threeGroups(10)
	labels := Agglomerative(m)
	require.Len(t, labels, 30)

	groupOf := func(i int) int { return i / 10 }
	byLabel := map[int]int{}
	for i, lbl := range labels {
		if g, ok := byLabel[lbl]; ok {
			assert.Equal(t, g, groupOf(i), "cluster %d spans groups %d and %d", lbl, g, groupOf(i))
		} else {
			byLabel[lbl] = groupOf(i)
		}
	}
}

func TestAgglomerative_LabelsDenseFromZero(t *testing.T) {
	m := threeGroups(10)
	labels := Agglomerative(m)

	ids := labels.ClusterIDs()
	require.Len(t, ids, 5)
	for want, got := range ids {
		assert.Equal(t, want, got, "cluster ids must be dense from 0")
	}
}

func TestAgglomerative_Deterministic(t *testing.T) {
	m := threeGroups(10)
	assert.Equal(t, Agglomerative(m), Agglomerative(m))
}

func TestAgglomerative_Empty(t *testing.T) {
	assert.Empty(t, Agglomerative(core.Matrix{}))
}
