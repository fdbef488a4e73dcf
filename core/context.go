package core

import (
	"sync"

	"github.com/rushteam/big5rec/pkg/utils"
)

// RecommendContext 承载一次请求的用户输入，贯穿整个 Pipeline 透传。
// 每个请求独享一个实例；Fanout 中多个召回源可能并发写 Labels，读写走 PutLabel/GetLabel。
type RecommendContext struct {
	mu sync.Mutex

	UserID string
	Scene  string

	// Personality 是查询向量；按选择推荐时可以为空
	Personality *PersonalityVector

	// SelectedIDs 是用户在表单里选中的歌曲（物品协同的输入）
	SelectedIDs []string

	// Labels 是请求级标签，例如 fallback、degenerate
	Labels map[string]utils.Label

	// Params 请求级参数：limit、原始 ope/con/... 表单值等
	Params map[string]any

	skipped []SkippedItem
}

// SkippedItem 记录未能处理的输入物品及原因（错误码）。
type SkippedItem struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// AddSkipped 追加一条跳过记录；同一 ID 重复出现时逐条保留。
func (rctx *RecommendContext) AddSkipped(items ...SkippedItem) {
	rctx.mu.Lock()
	defer rctx.mu.Unlock()
	rctx.skipped = append(rctx.skipped, items...)
}

// Skipped 返回跳过记录的拷贝（按写入顺序）。
func (rctx *RecommendContext) Skipped() []SkippedItem {
	rctx.mu.Lock()
	defer rctx.mu.Unlock()
	if len(rctx.skipped) == 0 {
		return nil
	}
	return append([]SkippedItem(nil), rctx.skipped...)
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	rctx.mu.Lock()
	defer rctx.mu.Unlock()
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	rctx.mu.Lock()
	defer rctx.mu.Unlock()
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// IsSelected 判断物品是否已被用户选中。
func (rctx *RecommendContext) IsSelected(id string) bool {
	for _, s := range rctx.SelectedIDs {
		if s == id {
			return true
		}
	}
	return false
}
