package feature

import (
	"context"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/utils"
)

// CatalogLookup 按歌曲 ID 查描述字段（Title/Artist/Genre ...）。dataset.Catalog 实现此接口。
type CatalogLookup interface {
	Lookup(id string) (map[string]string, bool)
}

// CatalogEnrichNode 把歌曲目录中的描述字段写入 item.Meta。
// 已存在的 Meta 字段不覆盖；Genre 同时写成 label，供 rerank.Diversity 使用。
type CatalogEnrichNode struct {
	Catalog CatalogLookup
	// DropUnknown 为 true 时丢弃目录中不存在的 item
	DropUnknown bool
	// Features 额外把人格向量写入 item.Features（前缀 user_）
	Features bool
}

func (n *CatalogEnrichNode) Name() string        { return "feature.catalog" }
func (n *CatalogEnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *CatalogEnrichNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	var userFeatures map[string]float64
	if n.Features && rctx != nil && rctx.Personality != nil {
		userFeatures, _ = (&PersonalityExtractor{Prefix: "user_"}).Extract(ctx, rctx)
	}

	out := items[:0]
	for _, it := range items {
		if it == nil {
			continue
		}
		var desc map[string]string
		found := false
		if n.Catalog != nil {
			desc, found = n.Catalog.Lookup(it.ID)
		}
		if !found && n.DropUnknown {
			continue
		}
		for k, v := range desc {
			if _, exists := it.Meta[k]; !exists {
				it.Meta[k] = v
			}
		}
		if genre := it.MetaString("Genre"); genre != "" {
			it.PutLabel("Genre", utils.Label{Value: genre, Source: "catalog"})
		}
		for k, v := range userFeatures {
			it.Features[k] = v
		}
		out = append(out, it)
	}
	return out, nil
}
