package rerank

import (
	"context"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
)

// Diversity 按流派打散：同一流派最多保留 MaxPerKey 首（保留先出现的）。
// 流派来源优先级：
// - label[LabelKey].Value
// - meta[LabelKey] (string)
// 没有流派信息的 item 不受限制。
type Diversity struct {
	LabelKey  string // 默认 "Genre"
	MaxPerKey int    // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "Genre"
	}
	perKey := n.MaxPerKey
	if perKey <= 0 {
		perKey = 1
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}

		cate := ""
		if lbl, ok := it.GetLabel(key); ok {
			cate = lbl.Value
		}
		if cate == "" {
			cate = it.MetaString(key)
		}

		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= perKey {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}
	return out, nil
}
