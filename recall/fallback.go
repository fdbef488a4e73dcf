package recall

import (
	"context"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/logging"
	"github.com/rushteam/big5rec/pkg/utils"
)

// Fallback 先执行 Primary；Primary 没有结果或出错时执行 Secondary，
// 并在 rctx 与每个 item 上打 fallback=true。
type Fallback struct {
	Primary   pipeline.Node
	Secondary pipeline.Node
}

func (n *Fallback) Name() string        { return "recall.fallback" }
func (n *Fallback) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fallback) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	out, err := n.Primary.Process(ctx, rctx, items)
	if err == nil && len(out) > 0 {
		return out, nil
	}
	if n.Secondary == nil {
		return out, err
	}
	log := logging.Ctx(ctx)
	if err != nil {
		log.Warn().Err(err).Str("primary", n.Primary.Name()).Msg("primary recall failed, using fallback")
	} else {
		log.Info().Str("primary", n.Primary.Name()).Msg("primary recall empty, using fallback")
	}

	out, err = n.Secondary.Process(ctx, rctx, items)
	if err != nil {
		return nil, err
	}
	lbl := utils.Label{Value: "true", Source: n.Secondary.Name()}
	if rctx != nil {
		rctx.PutLabel(LabelFallback, lbl)
	}
	for _, it := range out {
		it.PutLabel(LabelFallback, lbl)
	}
	return out, nil
}
