package similarity

import (
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/big5rec/core"
)

// Metric 是距离度量函数：越小越相似。
type Metric func(a, b core.PersonalityVector) (float64, error)

const (
	MetricCosine    = "cosine"
	MetricEuclidean = "euclidean"
)

var (
	metricsMu sync.RWMutex
	metrics   = map[string]Metric{
		MetricCosine:    CosineDistance,
		MetricEuclidean: EuclideanDistance,
	}
)

// Register 注册自定义度量，同名覆盖。
func Register(name string, m Metric) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	metrics[strings.ToLower(name)] = m
}

// Lookup 按名称查找度量，空名称返回 cosine。
func Lookup(name string) (Metric, error) {
	if name == "" {
		name = MetricCosine
	}
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	m, ok := metrics[strings.ToLower(name)]
	if !ok {
		return nil, core.Errorf(core.ModuleSimilarity, core.ErrorCodeNotSupported, "similarity: unknown metric %q", name)
	}
	return m, nil
}

// Names 返回已注册的度量名（排序后）。
func Names() []string {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	out := make([]string, 0, len(metrics))
	for k := range metrics {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
