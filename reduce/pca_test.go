package reduce

import (
	"testing"

	"github.com/poiesic/topical/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatrix() core.Matrix {
	return core.Matrix{
		{1.0, 0.1, 0.0, 5.0},
		{0.9, 0.2, 0.1, 4.8},
		{0.0, 3.0, 2.9, 0.1},
		{0.1, 3.1, 3.0, 0.0},
		{0.5, 1.5, 1.4, 2.5},
	}
}

func TestProject_Shape(t *testing.T) {
	out, err := Project(testMatrix(), Params{Components: 2, Seed: 42})
	require.NoError(t, err)
	require.Equal(t, 5, out.Rows(), "row count must equal input row count")
	for _, row := range out {
		assert.Len(t, row, 2)
	}
}

func TestProject_Deterministic(t *testing.T) {
	p := Params{Components: 2, Seed: 42}
	first, err := Project(testMatrix(), p)
	require.NoError(t, err)
	second, err := Project(testMatrix(), p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProject_ComponentsClampedToData(t *testing.T) {
	m := core.Matrix{{1, 2}, {3, 4}, {5, 6}}
	out, err := Project(m, Params{Components: 10, Seed: 42})
	require.NoError(t, err)
	require.Equal(t, 3, out.Rows())
	assert.Len(t, out[0], 2, "cannot project onto more components than columns")
}

func TestProject_Empty(t *testing.T) {
	out, err := Project(core.Matrix{}, Params{Components: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rows())
}

func TestProject_InvalidComponents(t *testing.T) {
	_, err := Project(testMatrix(), Params{Components: 0})
	assert.ErrorIs(t, err, ErrNoComponents)
}

func TestProject_SeparationPreserved(t *testing.T) {
	// Two well-separated groups must stay separated in 2-D.
	m := core.Matrix{
		{10, 10, 10, 10}, {10.1, 10, 9.9, 10}, {9.9, 10.1, 10, 10},
		{-10, -10, -10, -10}, {-10.1, -9.9, -10, -10}, {-9.9, -10, -10.1, -10},
	}
	out, err := Project(m, Params{Components: 2, Seed: 1})
	require.NoError(t, err)

	// The first principal component separates the groups around zero.
	sameSide := (out[0][0] > 0) == (out[1][0] > 0) && (out[1][0] > 0) == (out[2][0] > 0)
	assert.True(t, sameSide, "group one must project to the same side")
	otherSide := (out[3][0] > 0) == (out[4][0] > 0) && (out[4][0] > 0) == (out[5][0] > 0)
	assert.True(t, otherSide, "group two must project to the same side")
	assert.NotEqual(t, out[0][0] > 0, out[3][0] > 0, "groups must land on opposite sides")
}
