package core

// RecallConfig 提供召回默认值，调用方未指定时使用。
type RecallConfig interface {
	// DefaultTopK 返回内容召回的条数
	DefaultTopK() int

	// DefaultNeighbors 返回近邻用户数
	DefaultNeighbors() int

	// DefaultPerItemLimit 返回每个选中物品的相似物品数
	DefaultPerItemLimit() int

	// DefaultLikedThreshold 返回近邻评分被视为"喜欢"的阈值
	DefaultLikedThreshold() float64

	// DefaultLikedPerNeighbor 返回每个近邻最多贡献的歌曲数
	DefaultLikedPerNeighbor() int

	// DefaultMaxResults 返回最终结果上限
	DefaultMaxResults() int
}

// DefaultRecallConfig 是默认的召回配置实现。
type DefaultRecallConfig struct{}

func (c *DefaultRecallConfig) DefaultTopK() int { return 5 }

func (c *DefaultRecallConfig) DefaultNeighbors() int { return 5 }

func (c *DefaultRecallConfig) DefaultPerItemLimit() int { return 5 }

func (c *DefaultRecallConfig) DefaultLikedThreshold() float64 { return 5.0 }

func (c *DefaultRecallConfig) DefaultLikedPerNeighbor() int { return 3 }

func (c *DefaultRecallConfig) DefaultMaxResults() int { return 10 }
