package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityMatrix_Column(t *testing.T) {
	m, err := NewSquareSimilarityMatrix([]string{"X", "Y", "Z"}, [][]float64{
		{1.0, 0.9, 0.8},
		{0.9, 1.0, 0.1},
		{0.8, 0.1, 1.0},
	})
	require.NoError(t, err)

	col, err := m.Column("X")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 0.9, 0.8}, col)

	col[0] = 42
	again, _ := m.Column("X")
	assert.Equal(t, 1.0, again[0])

	_, err = m.Column("W")
	assert.True(t, IsKeyNotFound(err))

	s, err := m.Score("Y", "Z")
	require.NoError(t, err)
	assert.Equal(t, 0.1, s)
}

func TestSimilarityMatrix_Invalid(t *testing.T) {
	_, err := NewSquareSimilarityMatrix([]string{"X", "Y"}, [][]float64{{1, 0}})
	assert.True(t, IsInvalidInput(err))

	_, err = NewSquareSimilarityMatrix([]string{"X", "Y"}, [][]float64{{1, 0}, {1}})
	assert.True(t, IsInvalidInput(err))

	_, err = NewSquareSimilarityMatrix([]string{"X", "X"}, [][]float64{{1, 0}, {0, 1}})
	assert.True(t, IsInvalidInput(err))
}

func TestRankedResult_Head(t *testing.T) {
	r := RankedResult{Neighbors: make([]Neighbor, 3)}
	assert.Len(t, r.Head(2), 2)
	assert.Len(t, r.Head(10), 3)
	assert.Len(t, r.Head(0), 3)
	assert.Equal(t, []string{"B"}, RankedResult{Columns: []string{"A"}}.HasColumns("A", "B"))
}
