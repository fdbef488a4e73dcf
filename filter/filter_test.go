package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, len(ids))
	for i, id := range ids {
		out[i] = core.NewItem(id)
	}
	return out
}

func ids(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFilterNode_Blacklist(t *testing.T) {
	in := items("a", "b", "c")
	n := &FilterNode{Filters: []Filter{NewBlacklistFilter([]string{"b"}, nil, "")}}
	out, err := n.Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(out))

	lbl, ok := in[1].GetLabel("filtered")
	require.True(t, ok)
	assert.Equal(t, "filter.blacklist", lbl.Source)
}

func TestBlacklistFilter_Store(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	adapter := NewStoreAdapter(s)
	require.NoError(t, adapter.SetBlacklist(ctx, "blacklist:songs", []string{"c"}, time.Minute))

	n := &FilterNode{Filters: []Filter{NewBlacklistFilter(nil, adapter, "blacklist:songs")}}
	out, err := n.Process(ctx, &core.RecommendContext{}, items("a", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(out))

	// key 不存在时不过滤
	missing := &FilterNode{Filters: []Filter{NewBlacklistFilter(nil, adapter, "nope")}}
	out, err = missing.Process(ctx, &core.RecommendContext{}, items("a", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(out))
}

func TestSelectedFilter(t *testing.T) {
	n := &FilterNode{Filters: []Filter{&SelectedFilter{}}}
	rctx := &core.RecommendContext{SelectedIDs: []string{"x"}}
	out, err := n.Process(context.Background(), rctx, items("x", "y"))
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, ids(out))
}

func TestExpressionFilter(t *testing.T) {
	in := items("a", "b", "c")
	in[0].Meta["Genre"] = "Metal"
	in[1].Meta["Genre"] = "Jazz"

	f, err := NewExpressionFilter(`has(item.meta.Genre) && item.meta.Genre == "Metal" && trait.neu > 4.0`, false)
	require.NoError(t, err)

	calm := core.PersonalityVector{Openness: 3, Conscientiousness: 3, Extraversion: 3, Agreeableness: 3, Neuroticism: 4.5}
	out, err := (&FilterNode{Filters: []Filter{f}}).Process(context.Background(), &core.RecommendContext{Personality: &calm}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(out))

	keep, err := NewExpressionFilter(`item.id == "c"`, true)
	require.NoError(t, err)
	out, err = (&FilterNode{Filters: []Filter{keep}}).Process(context.Background(), &core.RecommendContext{}, items("a", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(out))

	_, err = NewExpressionFilter("item.id ==", false)
	assert.Error(t, err)
}
