package recall

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/logging"
	"github.com/rushteam/big5rec/pkg/utils"
)

// MergeStrategy 合并多路召回结果。results 按 Sources 顺序排列（下标即优先级）。
type MergeStrategy interface {
	Merge(results [][]*core.Item, dedup bool) []*core.Item
}

// FirstMergeStrategy 按 Sources 顺序拼接，去重时保留第一次出现的，并合并后来者的 labels。
type FirstMergeStrategy struct{}

func (FirstMergeStrategy) Merge(results [][]*core.Item, dedup bool) []*core.Item {
	all := flatten(results)
	if !dedup {
		return all
	}
	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if old, ok := seen[it.ID]; ok {
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out
}

// UnionMergeStrategy 保留所有来源的结果，不去重。
type UnionMergeStrategy struct{}

func (UnionMergeStrategy) Merge(results [][]*core.Item, _ bool) []*core.Item {
	return flatten(results)
}

// PriorityMergeStrategy 高优先级来源的结果整体排在前面；相同 ID 保留高优先级的 item，
// 低优先级的 labels 不合并，避免 explain 被兜底来源污染。
type PriorityMergeStrategy struct{}

func (PriorityMergeStrategy) Merge(results [][]*core.Item, dedup bool) []*core.Item {
	all := flatten(results)
	if !dedup {
		return all
	}
	seen := make(map[string]struct{}, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

func flatten(results [][]*core.Item) []*core.Item {
	n := 0
	for _, r := range results {
		n += len(r)
	}
	out := make([]*core.Item, 0, n)
	for _, r := range results {
		for _, it := range r {
			if it != nil {
				out = append(out, it)
			}
		}
	}
	return out
}

// Fanout 是一个 Recall Node：并发执行多个召回源，并合并结果。
// 单个召回源出错或超时只记日志，不影响其他来源。
type Fanout struct {
	Sources       []Source
	Dedup         bool
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy MergeStrategy // 默认 FirstMergeStrategy
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	log := logging.Ctx(ctx)
	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				log.Warn().Err(err).Str("source", src.Name()).Msg("recall source failed")
				return nil
			}

			// 记录召回优先级 label，方便 explain / 观测
			priority := utils.Label{Value: strconv.Itoa(i), Source: "recall"}
			for _, it := range items {
				if it == nil {
					continue
				}
				if _, ok := it.Labels[LabelRecallSource]; !ok {
					putSourceLabel(it, src.Name())
				}
				it.PutLabel(LabelRecallPriority, priority)
			}
			// 每个 goroutine 只写自己的下标
			results[i] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	strategy := n.MergeStrategy
	if strategy == nil {
		strategy = FirstMergeStrategy{}
	}
	return strategy.Merge(results, n.Dedup), nil
}
