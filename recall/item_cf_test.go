package recall

import (
	"context"
	"testing"

	"github.com/rushteam/big5rec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xyzMatrix(t *testing.T) *core.SimilarityMatrix {
	t.Helper()
	m, err := core.NewSquareSimilarityMatrix([]string{"X", "Y", "Z"}, [][]float64{
		{1.0, 0.8, 0.3},
		{0.8, 1.0, 0.5},
		{0.3, 0.5, 1.0},
	})
	require.NoError(t, err)
	return m
}

func TestSimilarItems_ConcreteScenario(t *testing.T) {
	res := SimilarItems(xyzMatrix(t), []string{"X"}, 5)
	assert.Equal(t, []string{"Y", "Z"}, res.IDs())
	assert.Empty(t, res.Skipped)
	assert.Equal(t, "X", res.Items[0].Seed)
	assert.Equal(t, 0.8, res.Items[0].Score)
}

func TestSimilarItems_NeverReturnsSelf(t *testing.T) {
	m := xyzMatrix(t)
	for _, id := range []string{"X", "Y", "Z"} {
		res := SimilarItems(m, []string{id}, 5)
		assert.NotContains(t, res.IDs(), id)
		assert.Len(t, res.IDs(), 2)
	}
}

func TestSimilarItems_SelfNotTopRanked(t *testing.T) {
	// 自相似度不是最大值时仍按 ID 排除自身
	m, err := core.NewSquareSimilarityMatrix([]string{"A", "B", "C"}, [][]float64{
		{0.5, 0.9, 0.1},
		{0.9, 1.0, 0.2},
		{0.1, 0.2, 1.0},
	})
	require.NoError(t, err)
	res := SimilarItems(m, []string{"A"}, 5)
	assert.Equal(t, []string{"B", "C"}, res.IDs())
}

func TestSimilarItems_MissingIDPartialResult(t *testing.T) {
	res := SimilarItems(xyzMatrix(t), []string{"W", "Y"}, 5)
	assert.Equal(t, []string{"X", "Z"}, res.IDs())
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "W", res.Skipped[0].ID)
	assert.Equal(t, core.ErrorCodeKeyNotFound, res.Skipped[0].Reason)
}

func TestSimilarItems_LimitAndDuplicates(t *testing.T) {
	m := xyzMatrix(t)
	res := SimilarItems(m, []string{"X", "Y"}, 1)
	assert.Equal(t, []string{"Y", "X"}, res.IDs())

	res = SimilarItems(m, []string{"Y", "Z"}, 0)
	// Y -> X(0.8), Z(0.5)；Z -> Y(0.5), X(0.3)
	assert.Equal(t, []string{"X", "Z", "Y", "X"}, res.IDs())
}

func TestSimilarItems_TiesByRowIndex(t *testing.T) {
	m, err := core.NewSquareSimilarityMatrix([]string{"A", "B", "C", "D"}, [][]float64{
		{1, 0.5, 0.5, 0.5},
		{0.5, 1, 0, 0},
		{0.5, 0, 1, 0},
		{0.5, 0, 0, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "D"}, SimilarItems(m, []string{"A"}, 5).IDs())
}

func TestSimilarItems_RectangularDropsFirst(t *testing.T) {
	// 列 Q 没有对应行：丢弃排序后的第一项
	m, err := core.NewSimilarityMatrix([]string{"A", "B", "C"}, []string{"Q"}, [][]float64{{0.9}, {0.7}, {0.8}})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, SimilarItems(m, []string{"Q"}, 5).IDs())
}

func TestItemCFRecall(t *testing.T) {
	r := &ItemCFRecall{Matrix: xyzMatrix(t), PerItemLimit: 5}
	rctx := &core.RecommendContext{SelectedIDs: []string{"X", "missing"}}
	items, err := r.Recall(context.Background(), rctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Y", items[0].ID)
	assert.Equal(t, "X", items[0].Meta["seed"])

	lbl, ok := rctx.GetLabel(LabelSkipped)
	require.True(t, ok)
	assert.Equal(t, "missing", lbl.Value)
	assert.Equal(t, []SkippedItem{{ID: "missing", Reason: core.ErrorCodeKeyNotFound}}, rctx.Skipped())

	_, err = r.Recall(context.Background(), &core.RecommendContext{})
	assert.True(t, core.IsInvalidInput(err))
}

func TestItemCFRecall_SkippedKeepsEveryID(t *testing.T) {
	r := &ItemCFRecall{Matrix: xyzMatrix(t)}
	rctx := &core.RecommendContext{SelectedIDs: []string{"Q", "a|b", "Q"}}
	_, err := r.Recall(context.Background(), rctx)
	require.NoError(t, err)

	skipped := rctx.Skipped()
	require.Len(t, skipped, 3)
	assert.Equal(t, "Q", skipped[0].ID)
	assert.Equal(t, "a|b", skipped[1].ID)
	assert.Equal(t, "Q", skipped[2].ID)
	for _, s := range skipped {
		assert.Equal(t, core.ErrorCodeKeyNotFound, s.Reason)
	}
}
