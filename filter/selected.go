package filter

import (
	"context"

	"github.com/rushteam/big5rec/core"
)

// SelectedFilter 过滤掉用户已经选中的歌曲，物品协同结果里不应再出现输入本身。
type SelectedFilter struct{}

func (f *SelectedFilter) Name() string { return "filter.selected" }

func (f *SelectedFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if rctx == nil || item == nil {
		return false, nil
	}
	return rctx.IsSelected(item.ID), nil
}
