package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/dataset"
	"github.com/rushteam/big5rec/filter"
	"github.com/rushteam/big5rec/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pv(o, c, e, a, n float64) core.PersonalityVector {
	return core.PersonalityVector{Openness: o, Conscientiousness: c, Extraversion: e, Agreeableness: a, Neuroticism: n}
}

func testData(t *testing.T) *dataset.ReferenceData {
	t.Helper()
	songs := core.NewReferenceTable([]string{"Title", "Artist", "Genre"}, []core.ReferenceRow{
		{ID: "0", Vector: pv(5, 3, 4, 2, 1), Payload: map[string]string{"Title": "A", "Artist": "AA", "Genre": "Rock"}},
		{ID: "1", Vector: pv(1, 1, 1, 1, 1), Payload: map[string]string{"Title": "B", "Artist": "BB", "Genre": "Jazz"}},
		{ID: "2", Vector: pv(4, 3, 4, 2, 1), Payload: map[string]string{"Title": "C", "Artist": "CC", "Genre": "Pop"}},
	})
	users := core.NewReferenceTable([]string{"Song A", "Song B"}, []core.ReferenceRow{
		{ID: "u0", Vector: pv(5, 3, 4, 2, 1), Payload: map[string]string{"Song A": "5", "Song B": "3"}},
		{ID: "u1", Vector: pv(1, 5, 1, 5, 1), Payload: map[string]string{"Song A": "1", "Song B": "4"}},
	})
	m, err := core.NewSquareSimilarityMatrix([]string{"X", "Y", "Z"}, [][]float64{
		{1.0, 0.8, 0.3},
		{0.8, 1.0, 0.5},
		{0.3, 0.5, 1.0},
	})
	require.NoError(t, err)
	return &dataset.ReferenceData{Songs: songs, Users: users, Matrix: m}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(testData(t), DefaultSettings(), opts...)
	require.NoError(t, err)
	return e
}

func TestRecommendByPersonality(t *testing.T) {
	e := newTestEngine(t)
	res := e.RecommendByPersonality(context.Background(), pv(5, 3, 4, 2, 1), 0)
	assert.Equal(t, ReasonOK, res.Reason)
	require.NotEmpty(t, res.Items)
	assert.Equal(t, "0", res.Items[0].ID)
	assert.Equal(t, "A", res.Items[0].Fields["Title"])
	assert.Equal(t, "content", res.Items[0].Source)

	ids := map[string]bool{}
	for _, it := range res.Items {
		assert.False(t, ids[it.ID], "duplicate %s", it.ID)
		ids[it.ID] = true
	}
	assert.True(t, ids["Song A"], "liked song of nearest user")
	assert.False(t, ids["Song B"])
}

func TestRecommendByPersonality_Limit(t *testing.T) {
	e := newTestEngine(t)
	res := e.RecommendByPersonality(context.Background(), pv(5, 3, 4, 2, 1), 2)
	assert.Len(t, res.Items, 2)
}

func TestRecommendByPersonality_InvalidVector(t *testing.T) {
	e := newTestEngine(t)
	res := e.RecommendByPersonality(context.Background(), pv(0, 0, 0, 0, 0), 5)
	assert.Equal(t, ReasonDegenerateVector, res.Reason)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)

	res = e.RecommendByPersonality(context.Background(), pv(math.NaN(), 1, 1, 1, 1), 5)
	assert.Equal(t, ReasonInvalidInput, res.Reason)
	assert.Empty(t, res.Items)
}

func TestRecommendByPersonality_FallbackWithoutData(t *testing.T) {
	e, err := New(nil, DefaultSettings())
	require.NoError(t, err)
	res := e.RecommendByPersonality(context.Background(), pv(4.5, 2, 4.2, 3, 2), 0)
	assert.Equal(t, ReasonFallback, res.Reason)
	require.NotEmpty(t, res.Items)
	assert.Equal(t, "rules", res.Items[0].Source)
	assert.NotEmpty(t, res.Items[0].Explain)
	assert.LessOrEqual(t, len(res.Items), DefaultSettings().Recall.MaxResults)
}

func TestRecommendBySelection(t *testing.T) {
	e := newTestEngine(t)
	res := e.RecommendBySelection(context.Background(), []string{"X"}, 0)
	assert.Equal(t, ReasonOK, res.Reason)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Y", res.Items[0].ID)
	assert.Equal(t, "Z", res.Items[1].ID)
	assert.Empty(t, res.Skipped)
}

func TestRecommendBySelection_Partial(t *testing.T) {
	e := newTestEngine(t)
	res := e.RecommendBySelection(context.Background(), []string{"missing", "X"}, 0)
	assert.Equal(t, ReasonPartial, res.Reason)
	require.Len(t, res.Items, 2)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "missing", res.Skipped[0].ID)
	assert.Equal(t, core.ErrorCodeKeyNotFound, res.Skipped[0].Reason)
}

func TestRecommendBySelection_SkippedDuplicates(t *testing.T) {
	e := newTestEngine(t)
	res := e.RecommendBySelection(context.Background(), []string{"Q", "X", "Q", "p|q"}, 0)
	assert.Equal(t, ReasonPartial, res.Reason)
	require.Len(t, res.Skipped, 3)
	assert.Equal(t, []string{"Q", "Q", "p|q"}, []string{res.Skipped[0].ID, res.Skipped[1].ID, res.Skipped[2].ID})
}

func TestRecommendBySelection_ExcludesSelected(t *testing.T) {
	e := newTestEngine(t)
	res := e.RecommendBySelection(context.Background(), []string{"X", "Y"}, 0)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Z", res.Items[0].ID)
}

func TestRecommendBySelection_Edges(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, ReasonInvalidInput, e.RecommendBySelection(context.Background(), nil, 5).Reason)

	res := e.RecommendBySelection(context.Background(), []string{"nope"}, 5)
	assert.Equal(t, ReasonNoResults, res.Reason)
	assert.Len(t, res.Skipped, 1)

	empty, err := New(nil, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, ReasonNoReferenceData, empty.RecommendBySelection(context.Background(), []string{"X"}, 5).Reason)
}

func TestNeighbors(t *testing.T) {
	e := newTestEngine(t)
	res := e.Neighbors(context.Background(), pv(5, 3, 4, 2, 1), 1)
	assert.Equal(t, ReasonOK, res.Reason)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "u0", res.Items[0].ID)
	assert.InDelta(t, 1.0, res.Items[0].Score, 1e-9)

	res = e.Neighbors(context.Background(), pv(5, 3, 4, 2, 1), 0)
	assert.Len(t, res.Items, 2)

	empty, err := New(nil, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, ReasonNoReferenceData, empty.Neighbors(context.Background(), pv(1, 2, 3, 4, 5), 3).Reason)
}

func TestEngine_CacheAndBlacklist(t *testing.T) {
	ms := store.NewMemoryStore()
	s := DefaultSettings()
	e := newTestEngine(t, WithCache(NewResultCache(ms, s.Cache)))
	defer e.Close()
	ctx := context.Background()

	require.NoError(t, filter.NewStoreAdapter(ms).SetBlacklist(ctx, BlacklistKey, []string{"2"}, time.Minute))

	first := e.RecommendByPersonality(ctx, pv(5, 3, 4, 2, 1), 0)
	for _, it := range first.Items {
		assert.NotEqual(t, "2", it.ID)
	}
	second := e.RecommendByPersonality(ctx, pv(5, 3, 4, 2, 1), 0)
	assert.Equal(t, first, second)
	assert.NoError(t, e.Ping(ctx))
}

func TestCacheKeys_DistinguishCloseVectors(t *testing.T) {
	a := pv(3, 3, 3, 3, 3)
	b := pv(3.00001, 3, 3, 3, 3)
	assert.NotEqual(t, personalityKey("cosine", a, 5), personalityKey("cosine", b, 5))
	assert.NotEqual(t, neighborsKey("cosine", a, 5), neighborsKey("cosine", b, 5))
	assert.Equal(t, personalityKey("cosine", a, 5), personalityKey("cosine", pv(3, 3, 3, 3, 3), 5))
	assert.NotEqual(t, personalityKey("cosine", a, 5), personalityKey("cosine", a, 6))
	assert.Equal(t, "3:3:3:3:3", vectorKey(a))
}
