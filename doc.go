// Package big5rec 是基于大五人格（Big Five）的音乐推荐工具包。
//
// 设计要点：
// - 参考数据只读：人格参考表、相似度矩阵在进程启动时加载一次，请求间共享且不加锁
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess）
// - Labels-first: 召回来源、fallback、跳过的物品等通过 labels 全链路透传
// - 失败不外抛：无效查询返回空列表与原因码，单个物品出错只跳过该物品
package big5rec

import (
	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/recall"
	"github.com/rushteam/big5rec/similarity"
)

// 轻量 facade：便于直接 import "big5rec" 使用核心抽象。
type (
	Pipeline          = pipeline.Pipeline
	Node              = pipeline.Node
	Kind              = pipeline.Kind
	PersonalityVector = core.PersonalityVector
	ReferenceTable    = core.ReferenceTable
	ReferenceRow      = core.ReferenceRow
	SimilarityMatrix  = core.SimilarityMatrix
	RankedResult      = core.RankedResult
	Record            = core.Record
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// Distance 返回两个人格向量的余弦距离；零向量返回 similarity.DegenerateDistance。
func Distance(a, b PersonalityVector) float64 {
	return similarity.Distance(a, b)
}

// Rank 按距离升序排列参考表的全部行。
func Rank(query PersonalityVector, table *ReferenceTable) RankedResult {
	return recall.Rank(query, table)
}

// TopKDescriptors 取排序结果前 k 行并投影描述列；k <= 0 时取 5。
func TopKDescriptors(ranked RankedResult, k int, columns ...string) ([]Record, error) {
	return recall.TopKDescriptors(ranked, k, columns)
}

// SimilarItems 返回每个选中物品最相似的若干物品（不含自身，按选中顺序拼接）。
// 矩阵中不存在的 ID 被跳过。
func SimilarItems(matrix *SimilarityMatrix, selectedIDs []string, perItemLimit int) []string {
	return recall.SimilarItems(matrix, selectedIDs, perItemLimit).IDs()
}
