package big5rec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/big5rec/core"
)

func TestFacade_RankScenario(t *testing.T) {
	query := PersonalityVector{Openness: 5, Conscientiousness: 3, Extraversion: 4, Agreeableness: 2, Neuroticism: 1}
	table := core.NewReferenceTable([]string{"Title"}, []ReferenceRow{
		{ID: "1", Vector: query, Payload: map[string]string{"Title": "A"}},
		{ID: "2", Vector: PersonalityVector{Openness: 1, Conscientiousness: 1, Extraversion: 1, Agreeableness: 1, Neuroticism: 1}, Payload: map[string]string{"Title": "B"}},
	})

	ranked := Rank(query, table)
	require.Equal(t, 2, ranked.Len())
	assert.Equal(t, "1", ranked.Neighbors[0].Row.ID)
	assert.InDelta(t, 0.0, ranked.Neighbors[0].Distance, 1e-12)
	assert.Greater(t, ranked.Neighbors[1].Distance, 0.0)

	recs, err := TopKDescriptors(ranked, 1, "Title")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"A"}, recs[0].Tuple("Title"))

	b := table.Row(1).Vector
	assert.Equal(t, Distance(query, b), Distance(b, query))
}

func TestFacade_SimilarItemsScenario(t *testing.T) {
	m, err := core.NewSquareSimilarityMatrix([]string{"X", "Y", "Z"}, [][]float64{
		{1.0, 0.8, 0.3},
		{0.8, 1.0, 0.5},
		{0.3, 0.5, 1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "Z"}, SimilarItems(m, []string{"X"}, 5))
	assert.Equal(t, []string{"Y", "Z"}, SimilarItems(m, []string{"missing", "X"}, 5))
}
