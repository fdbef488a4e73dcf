package builders

import (
	"sync/atomic"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/feature"
	"github.com/rushteam/big5rec/filter"
	"github.com/rushteam/big5rec/recall"
)

// Resources 是配置驱动的 Node 在构建时需要引用的进程级只读数据。
// 配置文件只写参数，参考表等大对象由入口加载后通过 Bind 注入。
type Resources struct {
	Songs   *core.ReferenceTable
	Users   *core.ReferenceTable
	Matrix  *core.SimilarityMatrix
	Catalog feature.CatalogLookup
	// Rules 为 nil 时 recall.rules 使用内置规则
	Rules *recall.RuleSet
	// Blacklist 可选，filter.blacklist 配置了 key 时使用
	Blacklist filter.BlacklistStore
}

var bound atomic.Pointer[Resources]

// Bind 设置构建 Node 时使用的资源，应在 config.LoadPipeline 之前调用。
func Bind(res *Resources) {
	bound.Store(res)
}

func resources() *Resources {
	if res := bound.Load(); res != nil {
		return res
	}
	return &Resources{}
}
