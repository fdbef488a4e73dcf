package recall

import (
	"context"
	"sort"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/logging"
	"github.com/rushteam/big5rec/pkg/utils"
)

// DefaultPerItemLimit 是每个选中物品返回的相似物品数。
const DefaultPerItemLimit = 5

// SimilarItem 是物品协同的一条候选。
type SimilarItem struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	// Seed 是产生该候选的选中物品
	Seed string `json:"seed"`
}

// SkippedItem 记录未能处理的选中物品及原因。
type SkippedItem = core.SkippedItem

// SimilarItemsResult 是 SimilarItems 的返回值：拼接后的候选（允许重复）与被跳过的 id。
type SimilarItemsResult struct {
	Items   []SimilarItem
	Skipped []SkippedItem
}

// IDs 按顺序返回候选 ID（含重复）。
func (r SimilarItemsResult) IDs() []string {
	out := make([]string, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.ID
	}
	return out
}

type scoredRow struct {
	index int
	score float64
}

// SimilarItems 对每个选中物品，在相似度矩阵中取它的列，按分数降序（同分按行号升序）
// 排序后去掉自身，再取前 perItemLimit 个。
//
// 自身的判定：行 ID 等于选中 ID 的那一行；矩阵没有这一行时丢弃排序后的第一项。
// 各选中物品的列表按选中顺序拼接，不去重。
// 不在矩阵中的 ID 记为 KEY_NOT_FOUND 写入 Skipped，其余 ID 照常处理。
func SimilarItems(matrix *core.SimilarityMatrix, selectedIDs []string, perItemLimit int) SimilarItemsResult {
	return similarItems(context.Background(), matrix, selectedIDs, perItemLimit)
}

func similarItems(ctx context.Context, matrix *core.SimilarityMatrix, selectedIDs []string, perItemLimit int) SimilarItemsResult {
	if perItemLimit <= 0 {
		perItemLimit = DefaultPerItemLimit
	}
	log := logging.Ctx(ctx)
	var res SimilarItemsResult
	for _, id := range selectedIDs {
		col, err := matrix.Column(id)
		if err != nil {
			log.Debug().Err(err).Str("item_id", id).Msg("selected item not in similarity matrix, skipped")
			reason := core.ErrorCodeKeyNotFound
			if de := core.GetDomainError(err); de != nil {
				reason = de.Code
			}
			res.Skipped = append(res.Skipped, SkippedItem{ID: id, Reason: reason})
			continue
		}

		rows := make([]scoredRow, len(col))
		for i, s := range col {
			rows[i] = scoredRow{index: i, score: s}
		}
		sort.SliceStable(rows, func(a, b int) bool {
			return rows[a].score > rows[b].score
		})

		selfIndex, hasSelf := matrix.RowIndex(id)
		if !hasSelf && len(rows) > 0 {
			rows = rows[1:]
		}
		taken := 0
		for _, r := range rows {
			if taken >= perItemLimit {
				break
			}
			if hasSelf && r.index == selfIndex {
				continue
			}
			res.Items = append(res.Items, SimilarItem{ID: matrix.RowID(r.index), Score: r.score, Seed: id})
			taken++
		}
	}
	return res
}

// ItemCFRecall 是基于预计算物品相似度的召回源（Item-to-Item）。
// 输入是 rctx.SelectedIDs；跳过的 ID 记入 rctx.Skipped()，同时写入 "skipped" Label 供 explain 使用。
type ItemCFRecall struct {
	Matrix       *core.SimilarityMatrix
	PerItemLimit int
}

func (r *ItemCFRecall) Name() string        { return "recall.i2i" }
func (r *ItemCFRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ItemCFRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *ItemCFRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || len(rctx.SelectedIDs) == 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, "recall: no selected items")
	}
	res := similarItems(ctx, r.Matrix, rctx.SelectedIDs, r.PerItemLimit)
	rctx.AddSkipped(res.Skipped...)
	for _, s := range res.Skipped {
		rctx.PutLabel(LabelSkipped, utils.Label{Value: s.ID, Source: s.Reason})
	}

	out := make([]*core.Item, 0, len(res.Items))
	for _, si := range res.Items {
		it := core.NewItem(si.ID)
		it.Score = si.Score
		it.Meta["seed"] = si.Seed
		putSourceLabel(it, "i2i")
		out = append(out, it)
	}
	return out, nil
}
