package filter

import (
	"context"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/dsl"
)

// ExpressionFilter 用 CEL 表达式过滤，表达式为 true 的 item 被移除。
//
// 例如 `has(item.meta.Genre) && item.meta.Genre == "Metal" && trait.neu > 4.0`。
type ExpressionFilter struct {
	prg *dsl.Program
	// Invert 为 true 时保留表达式为 true 的 item
	Invert bool
}

// NewExpressionFilter 编译表达式。
func NewExpressionFilter(expr string, invert bool) (*ExpressionFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExpressionFilter{prg: prg, Invert: invert}, nil
}

func (f *ExpressionFilter) Name() string { return "filter.expression" }

func (f *ExpressionFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	ok, err := f.prg.EvalItem(item, rctx)
	if err != nil {
		return false, err
	}
	return ok != f.Invert, nil
}
