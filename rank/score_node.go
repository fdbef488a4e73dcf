package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/utils"
)

// ScoreNode 按 item.Score 降序稳定排序，分数相同保持召回顺序。
//
// SourceWeights 可按召回来源（label recall_source 的首个值）给分数加权，
// 例如 {"content": 1.0, "u2i": 0.8}；未配置的来源权重为 1。
// - 写入 labels：rank_model
type ScoreNode struct {
	SourceWeights map[string]float64
}

func (n *ScoreNode) Name() string        { return "rank.score" }
func (n *ScoreNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ScoreNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		if w, ok := n.weight(it); ok {
			it.Score *= w
			it.PutLabel("rank_weight", utils.Label{Value: strconv.FormatFloat(w, 'f', -1, 64), Source: "rank"})
		}
		it.PutLabel("rank_model", utils.Label{Value: "score", Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}

func (n *ScoreNode) weight(it *core.Item) (float64, bool) {
	if len(n.SourceWeights) == 0 {
		return 0, false
	}
	lbl, ok := it.GetLabel("recall_source")
	if !ok {
		return 0, false
	}
	src := lbl.Value
	for i := 0; i < len(src); i++ {
		if src[i] == '|' {
			src = src[:i]
			break
		}
	}
	w, ok := n.SourceWeights[src]
	return w, ok
}
