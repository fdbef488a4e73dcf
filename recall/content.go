package recall

import (
	"context"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/logging"
	"github.com/rushteam/big5rec/pkg/utils"
	"github.com/rushteam/big5rec/similarity"
)

// DefaultDescriptorColumns 是歌曲描述列。
var DefaultDescriptorColumns = []string{"Title", "Artist", "Genre"}

// DefaultTopK 是内容召回的默认条数。
const DefaultTopK = 5

// TopKDescriptors 取排序结果的前 k 行，并投影出 columns 指定的描述字段。
//
// k <= 0 时取 DefaultTopK；columns 为空时取 DefaultDescriptorColumns。
// 参考表缺少任一列时返回 SCHEMA_MISMATCH 与空结果。
// 某一行缺值时跳过该行并记日志，不向后补位。
func TopKDescriptors(ranked core.RankedResult, k int, columns []string) ([]core.Record, error) {
	return topKDescriptors(context.Background(), ranked, k, columns)
}

func topKDescriptors(ctx context.Context, ranked core.RankedResult, k int, columns []string) ([]core.Record, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(columns) == 0 {
		columns = DefaultDescriptorColumns
	}
	if missing := ranked.HasColumns(columns...); len(missing) > 0 {
		return []core.Record{}, core.Errorf(core.ModuleRecall, core.ErrorCodeSchemaMismatch,
			"recall: reference table lacks columns %v", missing)
	}

	log := logging.Ctx(ctx)
	head := ranked.Head(k)
	out := make([]core.Record, 0, len(head))
	for _, nb := range head {
		fields := make(map[string]string, len(columns))
		complete := true
		for _, c := range columns {
			v, ok := nb.Row.Field(c)
			if !ok {
				log.Debug().Str("row_id", nb.Row.ID).Str("column", c).Msg("row lacks descriptor, skipped")
				complete = false
				break
			}
			fields[c] = v
		}
		if !complete {
			continue
		}
		out = append(out, core.Record{ID: nb.Row.ID, Distance: nb.Distance, Fields: fields})
	}
	return out, nil
}

// ContentRecall 对歌曲人格表做近邻排序，返回与查询人格最接近的 K 首歌。
// Meta 写入描述字段；缺列时记日志并返回空结果，交给 Fallback 处理。
type ContentRecall struct {
	Table   *core.ReferenceTable
	TopK    int
	Columns []string
	// Metric 距离度量名称，默认 cosine
	Metric string
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ContentRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *ContentRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	query, err := queryVector(rctx)
	if err != nil {
		return nil, err
	}
	metric, err := similarity.Lookup(r.Metric)
	if err != nil {
		return nil, err
	}

	ranked := Rank(query, r.Table, WithMetric(metric), WithContext(ctx))
	records, err := topKDescriptors(ctx, ranked, r.TopK, r.Columns)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("source", r.Name()).Msg("content recall degraded to empty")
		rctx.PutLabel("schema_mismatch", utils.Label{Value: "true", Source: r.Name()})
		return nil, nil
	}

	out := make([]*core.Item, 0, len(records))
	for _, rec := range records {
		it := core.NewItem(rec.ID)
		it.Score = similarity.Similarity(rec.Distance)
		it.Features["distance"] = rec.Distance
		for k, v := range rec.Fields {
			it.Meta[k] = v
		}
		putSourceLabel(it, "content")
		out = append(out, it)
	}
	return out, nil
}
