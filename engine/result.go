package engine

import (
	"strings"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/recall"
)

// Reason 说明一次推荐结果的来历；列表为空时用于向调用方解释原因。
type Reason string

const (
	ReasonOK               Reason = "ok"
	ReasonFallback         Reason = "fallback"
	ReasonInvalidInput     Reason = "invalid_input"
	ReasonDegenerateVector Reason = "degenerate_vector"
	ReasonSchemaMismatch   Reason = "schema_mismatch"
	ReasonNoReferenceData  Reason = "no_reference_data"
	ReasonNoResults        Reason = "no_results"
	ReasonPartial          Reason = "partial"
	ReasonTimeout          Reason = "timeout"
)

// Recommendation 是对外输出的一条推荐。
type Recommendation struct {
	ID     string            `json:"id"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields,omitempty"`
	// Source 是产生它的召回来源（content / u2i / i2i / rules / neighbor）
	Source  string `json:"source,omitempty"`
	Explain string `json:"explain,omitempty"`
}

// Result 是引擎操作的统一返回值，Items 永不为 nil。
type Result struct {
	Items   []Recommendation     `json:"items"`
	Reason  Reason               `json:"reason"`
	Skipped []recall.SkippedItem `json:"skipped,omitempty"`
}

func emptyResult(reason Reason) Result {
	return Result{Items: []Recommendation{}, Reason: reason}
}

// reasonFor 把查询校验错误映射为 Reason。
func reasonFor(err error) Reason {
	switch {
	case core.IsDegenerateVector(err):
		return ReasonDegenerateVector
	case core.IsInvalidInput(err):
		return ReasonInvalidInput
	case core.IsSchemaMismatch(err):
		return ReasonSchemaMismatch
	default:
		return ReasonNoResults
	}
}

// 不进入 Fields 的内部 Meta。
var internalMeta = map[string]struct{}{
	"explain": {},
	"seed":    {},
}

func toRecommendations(items []*core.Item) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		rec := Recommendation{ID: it.ID, Score: it.Score, Explain: it.MetaString("explain")}
		if lbl, ok := it.GetLabel(recall.LabelRecallSource); ok {
			rec.Source, _, _ = strings.Cut(lbl.Value, "|")
		}
		for k, v := range it.Meta {
			if _, skip := internalMeta[k]; skip {
				continue
			}
			s, ok := v.(string)
			if !ok || s == "" {
				continue
			}
			if rec.Fields == nil {
				rec.Fields = make(map[string]string, len(it.Meta))
			}
			rec.Fields[k] = s
		}
		out = append(out, rec)
	}
	return out
}

// skippedFrom 返回物品协同在 rctx 上记录的跳过项。
func skippedFrom(rctx *core.RecommendContext) []recall.SkippedItem {
	return rctx.Skipped()
}
