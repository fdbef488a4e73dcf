package recall

import (
	"context"
	"sort"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/logging"
	"github.com/rushteam/big5rec/pkg/utils"
	"github.com/rushteam/big5rec/similarity"
)

type rankOptions struct {
	metric similarity.Metric
	ctx    context.Context
}

// RankOption 定制 Rank 的行为。
type RankOption func(*rankOptions)

// WithMetric 指定距离度量（默认 cosine）。
func WithMetric(m similarity.Metric) RankOption {
	return func(o *rankOptions) { o.metric = m }
}

// WithContext 让退化行的日志带上请求的 correlation id。
func WithContext(ctx context.Context) RankOption {
	return func(o *rankOptions) { o.ctx = ctx }
}

// Rank 计算 query 到参考表每一行的距离，按距离升序返回全部行。
//
// 排序在私有切片上进行，不会改写 table；距离相同时保持表中原有顺序。
// 退化行（零向量等）得到 similarity.DegenerateDistance 并记日志，仍参与排序。
func Rank(query core.PersonalityVector, table *core.ReferenceTable, opts ...RankOption) core.RankedResult {
	o := rankOptions{metric: similarity.CosineDistance, ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	result := core.RankedResult{Columns: table.Columns()}
	n := table.Len()
	if n == 0 {
		return result
	}

	log := logging.Ctx(o.ctx)
	neighbors := make([]core.Neighbor, n)
	for i := 0; i < n; i++ {
		row := table.Row(i)
		d, err := o.metric(query, row.Vector)
		if err != nil {
			log.Debug().Err(err).Str("row_id", row.ID).Int("index", i).Msg("degenerate reference row")
		}
		neighbors[i] = core.Neighbor{Row: row, Index: i, Distance: d}
	}
	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].Distance < neighbors[b].Distance
	})
	result.Neighbors = neighbors
	return result
}

// NeighborRecall 返回与查询人格最接近的 K 个用户，Score = 1 - distance。
type NeighborRecall struct {
	Table *core.ReferenceTable
	// K 近邻数，<= 0 时取 5
	K          int
	MetricName string
}

func (r *NeighborRecall) Name() string        { return "recall.neighbor" }
func (r *NeighborRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *NeighborRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *NeighborRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	query, err := queryVector(rctx)
	if err != nil {
		return nil, err
	}
	metricName := r.MetricName
	if metricName == "" {
		metricName = similarity.MetricCosine
	}
	metric, err := similarity.Lookup(metricName)
	if err != nil {
		return nil, err
	}
	k := r.K
	if k <= 0 {
		k = 5
	}

	ranked := Rank(query, r.Table, WithMetric(metric), WithContext(ctx))
	head := ranked.Head(k)
	out := make([]*core.Item, 0, len(head))
	for _, nb := range head {
		it := core.NewItem(nb.Row.ID)
		it.Score = similarity.Similarity(nb.Distance)
		it.Features["distance"] = nb.Distance
		for _, t := range core.Traits {
			it.Features[t.ShortName()] = nb.Row.Vector.Get(t)
		}
		putSourceLabel(it, "neighbor")
		it.PutLabel(LabelRecallMetric, utils.Label{Value: metricName, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
