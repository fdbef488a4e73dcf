package feature

import (
	"context"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
)

// FeatureExtractor 是特征抽取器的统一接口。
type FeatureExtractor interface {
	// Extract 从 RecommendContext 中提取特征，key 为特征名
	Extract(ctx context.Context, rctx *core.RecommendContext) (map[string]float64, error)

	// Name 返回抽取器名称（用于日志/监控）
	Name() string
}

// PersonalityExtractor 从请求上下文解析人格向量。
//
// 抽取策略（优先级顺序）：
//  1. rctx.Personality（强类型）
//  2. rctx.Params 中的 ope/con/ext/agr/neu 或全称 key
//
// 输出特征名：{Prefix}ope、{Prefix}con ...
type PersonalityExtractor struct {
	Prefix string
}

func (e *PersonalityExtractor) Name() string { return "feature.personality" }

// Vector 返回解析出的向量（未校验取值）。
func (e *PersonalityExtractor) Vector(rctx *core.RecommendContext) (core.PersonalityVector, error) {
	if rctx == nil {
		return core.PersonalityVector{}, core.NewDomainError(core.ModuleCore, core.ErrorCodeInvalidInput, "feature: nil context")
	}
	if rctx.Personality != nil {
		return *rctx.Personality, nil
	}
	return core.PersonalityFromMap(rctx.Params)
}

func (e *PersonalityExtractor) Extract(_ context.Context, rctx *core.RecommendContext) (map[string]float64, error) {
	v, err := e.Vector(rctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(core.Traits))
	for k, x := range v.ShortMap() {
		out[e.Prefix+k] = x
	}
	return out, nil
}

// PersonalityNode 在 Pipeline 开头把 Params 里的人格分数解析到 rctx.Personality，
// 配置驱动的 Pipeline 只需传原始表单值。
type PersonalityNode struct {
	Extractor *PersonalityExtractor
}

func (n *PersonalityNode) Name() string        { return "feature.personality" }
func (n *PersonalityNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *PersonalityNode) Process(_ context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	ext := n.Extractor
	if ext == nil {
		ext = &PersonalityExtractor{}
	}
	v, err := ext.Vector(rctx)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	rctx.Personality = &v
	return items, nil
}
