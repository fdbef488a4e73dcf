package recall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	name  string
	ids   []string
	err   error
	delay time.Duration
}

func (s *staticSource) Name() string        { return s.name }
func (s *staticSource) Kind() pipeline.Kind { return pipeline.KindRecall }

func (s *staticSource) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*core.Item, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, core.NewItem(id))
	}
	return out, nil
}

func (s *staticSource) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return s.Recall(ctx, rctx)
}

func ids(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFanout_PriorityOrderIsDeterministic(t *testing.T) {
	f := &Fanout{
		Sources: []Source{
			&staticSource{name: "slow", ids: []string{"a", "b"}, delay: 20 * time.Millisecond},
			&staticSource{name: "fast", ids: []string{"b", "c"}},
		},
		Dedup:         true,
		MergeStrategy: PriorityMergeStrategy{},
	}
	items, err := f.Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(items))

	lbl, _ := items[1].GetLabel(LabelRecallSource)
	assert.Equal(t, "slow", lbl.Value)
	p, _ := items[2].GetLabel(LabelRecallPriority)
	assert.Equal(t, "1", p.Value)
}

func TestFanout_FirstMergesLabels(t *testing.T) {
	f := &Fanout{
		Sources: []Source{
			&staticSource{name: "s1", ids: []string{"a"}},
			&staticSource{name: "s2", ids: []string{"a", "b"}},
		},
		Dedup: true,
	}
	items, err := f.Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(items))
	lbl, _ := items[0].GetLabel(LabelRecallSource)
	assert.Equal(t, "s1|s2", lbl.Value)
}

func TestFanout_UnionAndFailures(t *testing.T) {
	f := &Fanout{
		Sources: []Source{
			&staticSource{name: "ok", ids: []string{"a"}},
			&staticSource{name: "broken", err: errors.New("boom")},
			&staticSource{name: "slow", ids: []string{"z"}, delay: time.Second},
			&staticSource{name: "ok2", ids: []string{"a"}},
		},
		Timeout:       50 * time.Millisecond,
		MaxConcurrent: 2,
		MergeStrategy: UnionMergeStrategy{},
	}
	items, err := f.Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, ids(items))
}

func TestFallback(t *testing.T) {
	rctx := &core.RecommendContext{}
	n := &Fallback{
		Primary:   &staticSource{name: "empty"},
		Secondary: &staticSource{name: "rules", ids: []string{"x"}},
	}
	items, err := n.Process(context.Background(), rctx, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, ids(items))
	lbl, ok := items[0].GetLabel(LabelFallback)
	assert.True(t, ok)
	assert.Equal(t, "true", lbl.Value)
	_, ok = rctx.GetLabel(LabelFallback)
	assert.True(t, ok)

	rctx = &core.RecommendContext{}
	n.Primary = &staticSource{name: "primary", ids: []string{"p"}}
	items, err = n.Process(context.Background(), rctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, ids(items))
	_, ok = rctx.GetLabel(LabelFallback)
	assert.False(t, ok)

	n.Primary = &staticSource{name: "broken", err: errors.New("boom")}
	items, err = n.Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids(items))
}
