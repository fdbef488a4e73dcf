package rank

import (
	"context"
	"testing"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(id string, score float64, source string) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	if source != "" {
		it.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
	}
	return it
}

func TestScoreNode_StableDescending(t *testing.T) {
	in := []*core.Item{scored("a", 0.5, ""), scored("b", 0.9, ""), scored("c", 0.5, ""), nil}
	out, err := (&ScoreNode{}).Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
	assert.Nil(t, out[3])
}

func TestScoreNode_SourceWeights(t *testing.T) {
	in := []*core.Item{scored("liked", 1.0, "u2i"), scored("content", 0.9, "content|rules")}
	n := &ScoreNode{SourceWeights: map[string]float64{"u2i": 0.5}}
	out, err := n.Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, "content", out[0].ID)
	assert.Equal(t, 0.5, out[1].Score)
	lbl, ok := out[1].GetLabel("rank_weight")
	require.True(t, ok)
	assert.Equal(t, "0.5", lbl.Value)
}
