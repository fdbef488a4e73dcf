package recall

import (
	"context"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/utils"
)

// Source 表示一个可复用的召回源（近邻/内容/物品协同/近邻评分/规则）。
// 可以理解为"可并发 fan-out 的策略单元"。
// 本包内的召回源同时实现 pipeline.Node，可以直接放进 Pipeline。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Label keys written by recall sources.
const (
	LabelRecallSource   = "recall_source"
	LabelRecallPriority = "recall_priority"
	LabelRecallMetric   = "recall_metric"
	LabelFallback       = "fallback"
	LabelSkipped        = "skipped"
)

func putSourceLabel(it *core.Item, source string) {
	it.PutLabel(LabelRecallSource, utils.Label{Value: source, Source: "recall"})
}

// queryVector 从请求上下文取出查询向量并做校验。
func queryVector(rctx *core.RecommendContext) (core.PersonalityVector, error) {
	if rctx == nil || rctx.Personality == nil {
		return core.PersonalityVector{}, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, "recall: personality vector is required")
	}
	v := *rctx.Personality
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}
