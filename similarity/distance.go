// Package similarity 提供人格向量之间的距离度量。
//
// 所有函数都是纯函数，可在任意 goroutine 中并发调用。
package similarity

import (
	"math"

	"github.com/rushteam/big5rec/core"
)

// DegenerateDistance 是零向量或非有限值参与计算时返回的哨兵距离。
// 取余弦距离的最大值 2.0，保证退化行在升序排序中排在所有正常行之后。
const DegenerateDistance = 2.0

// CosineDistance 返回 1 - cos(a, b)。
//
// 两个向量先各自除以绝对值最大的分量再求点积与模长，任意有限输入都不会在平方和上溢出或下溢。
// 相同向量精确返回 0；参数交换结果逐位相同。
// 任一向量模长为 0 或含 NaN/Inf 时返回 (DegenerateDistance, DEGENERATE_VECTOR)。
func CosineDistance(a, b core.PersonalityVector) (float64, error) {
	av, ok := unitScale(a.Slice())
	if !ok {
		return DegenerateDistance, degenerate()
	}
	bv, ok := unitScale(b.Slice())
	if !ok {
		return DegenerateDistance, degenerate()
	}
	var dot, na, nb float64
	for i := range av {
		dot += av[i] * bv[i]
		na += av[i] * av[i]
		nb += bv[i] * bv[i]
	}
	// sqrt(na*nb) 而不是 sqrt(na)*sqrt(nb)：a == b 时分子分母逐位相等。
	// 乘法可交换，na*nb 与 nb*na 相同，保证对称。
	sim := dot / math.Sqrt(na*nb)
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return 1 - sim, nil
}

// unitScale 把向量缩放到最大绝对分量为 1；零向量或含非有限值时返回 false。
// 缩放后平方和落在 [1, len(v)]，余弦与缩放无关。
func unitScale(v []float64) ([]float64, bool) {
	var m float64
	for _, x := range v {
		if !finite(x) {
			return nil, false
		}
		if ax := math.Abs(x); ax > m {
			m = ax
		}
	}
	if m == 0 {
		return nil, false
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / m
	}
	return out, true
}

// Distance 是忽略错误的余弦距离，退化情况返回 DegenerateDistance。
func Distance(a, b core.PersonalityVector) float64 {
	d, _ := CosineDistance(a, b)
	return d
}

// EuclideanDistance 返回 L2 距离；含 NaN/Inf 时返回 (+Inf, DEGENERATE_VECTOR)。
func EuclideanDistance(a, b core.PersonalityVector) (float64, error) {
	av, bv := a.Slice(), b.Slice()
	var sum float64
	for i := range av {
		d := av[i] - bv[i]
		sum += d * d
	}
	if !finite(sum) {
		return math.Inf(1), degenerate()
	}
	return math.Sqrt(sum), nil
}

// Similarity 把余弦距离转回 [-1, 1] 的相似度，用作召回分数。
func Similarity(distance float64) float64 {
	return 1 - distance
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func degenerate() error {
	return core.NewDomainError(core.ModuleSimilarity, core.ErrorCodeDegenerateVector,
		"similarity: zero-magnitude or non-finite vector")
}
