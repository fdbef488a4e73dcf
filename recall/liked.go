package recall

import (
	"context"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/logging"
)

// DefaultLikedThreshold 是评分被视为"喜欢"的默认阈值。
const DefaultLikedThreshold = 5.0

// LikedOptions 控制"近邻喜欢的歌"抽取。除 Threshold 外，零值字段取默认值。
type LikedOptions struct {
	// Neighbors 参与的近邻用户数，默认 5
	Neighbors int
	// Threshold 评分 >= Threshold 视为喜欢；按原值使用，0 也是合法阈值。
	// 调用方一般传 DefaultLikedThreshold 或配置值。
	Threshold float64
	// PerNeighbor 每个近邻最多贡献几首，默认 3
	PerNeighbor int
	// Limit 总数上限，默认 10
	Limit int
	// Columns 评分列；为空时取表中除 Ignore 外的全部负载列
	Columns []string
	// Ignore 不参与评分的列（如 Name、Timestamp）
	Ignore []string
}

func (o LikedOptions) withDefaults() LikedOptions {
	if o.Neighbors <= 0 {
		o.Neighbors = 5
	}
	if o.PerNeighbor <= 0 {
		o.PerNeighbor = 3
	}
	if o.Limit <= 0 {
		o.Limit = 10
	}
	return o
}

func (o LikedOptions) ratingColumns(schema []string) []string {
	if len(o.Columns) > 0 {
		return o.Columns
	}
	ignore := make(map[string]struct{}, len(o.Ignore))
	for _, c := range o.Ignore {
		ignore[c] = struct{}{}
	}
	out := make([]string, 0, len(schema))
	for _, c := range schema {
		if _, skip := ignore[c]; !skip {
			out = append(out, c)
		}
	}
	return out
}

// LikedItems 从最相近的若干用户的评分里挑出他们喜欢的歌。
//
// 按近邻顺序遍历，每个近邻按列顺序取评分 >= Threshold 的前 PerNeighbor 首，
// 去重后截断到 Limit。无法解析的评分单元格跳过。
func LikedItems(ranked core.RankedResult, opts LikedOptions) ([]string, error) {
	return likedItems(context.Background(), ranked, opts)
}

func likedItems(ctx context.Context, ranked core.RankedResult, opts LikedOptions) ([]string, error) {
	opts = opts.withDefaults()
	if len(opts.Columns) > 0 {
		if missing := ranked.HasColumns(opts.Columns...); len(missing) > 0 {
			return []string{}, core.Errorf(core.ModuleRecall, core.ErrorCodeSchemaMismatch,
				"recall: ratings table lacks columns %v", missing)
		}
	}
	columns := opts.ratingColumns(ranked.Columns)

	log := logging.Ctx(ctx)
	seen := make(map[string]struct{})
	out := make([]string, 0, opts.Limit)
	for _, nb := range ranked.Head(opts.Neighbors) {
		picked := 0
		for _, c := range columns {
			if picked >= opts.PerNeighbor {
				break
			}
			raw, present := nb.Row.Field(c)
			if !present {
				continue
			}
			rating, ok := nb.Row.Rating(c)
			if !ok {
				log.Debug().Str("row_id", nb.Row.ID).Str("column", c).Str("value", raw).Msg("unparsable rating, skipped")
				continue
			}
			if rating < opts.Threshold {
				continue
			}
			picked++
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
			if len(out) >= opts.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// LikedRecall 是"相似的人喜欢什么"召回源（User-to-Item）。
// Table 是用户人格 + 歌曲评分表，评分列名即歌曲 ID。
type LikedRecall struct {
	Table   *core.ReferenceTable
	Options LikedOptions
}

func (r *LikedRecall) Name() string        { return "recall.u2i" }
func (r *LikedRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *LikedRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *LikedRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	query, err := queryVector(rctx)
	if err != nil {
		return nil, err
	}
	ranked := Rank(query, r.Table, WithContext(ctx))
	ids, err := likedItems(ctx, ranked, r.Options)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("source", r.Name()).Msg("liked recall degraded to empty")
		return nil, nil
	}

	out := make([]*core.Item, 0, len(ids))
	for i, id := range ids {
		it := core.NewItem(id)
		// 保持抽取顺序：越靠前分数越高，落在 (0, 1]
		it.Score = 1 - float64(i)/float64(len(ids))
		putSourceLabel(it, "u2i")
		out = append(out, it)
	}
	return out, nil
}
