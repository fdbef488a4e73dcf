package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/logging"
	"github.com/rushteam/big5rec/pkg/metrics"
	"github.com/rushteam/big5rec/store"
)

// NewCacheStore 按配置创建结果缓存后端；backend 为 none 时返回 nil。
func NewCacheStore(ctx context.Context, s CacheSettings) (core.Store, error) {
	switch s.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return store.NewMemoryStore(time.Minute), nil
	case "redis":
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:        s.RedisAddr,
			Password:    s.RedisPassword,
			DB:          s.RedisDB,
			KeyPrefix:   s.KeyPrefix,
			DialTimeout: 3 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, core.Errorf(core.ModuleEngine, core.ErrorCodeNotSupported, "engine: unknown cache backend %q", s.Backend)
	}
}

// ResultCache 缓存推荐结果，后端调用经过熔断器；缓存故障只记日志，不影响推荐。
type ResultCache struct {
	store core.Store
	ttl   time.Duration
	cb    *gobreaker.CircuitBreaker[[]byte]
}

// NewResultCache 包装一个 Store。
func NewResultCache(s core.Store, cfg CacheSettings) *ResultCache {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	st := gobreaker.Settings{
		Name:        "result-cache:" + s.Name(),
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cache breaker state changed")
			metrics.SetBreakerState(int(to))
		},
	}
	return &ResultCache{store: s, ttl: cfg.TTL, cb: gobreaker.NewCircuitBreaker[[]byte](st)}
}

// Store 返回底层存储。
func (c *ResultCache) Store() core.Store { return c.store }

// Get 读取缓存，未命中或出错都返回 false。
func (c *ResultCache) Get(ctx context.Context, key string) (Result, bool) {
	var res Result
	data, err := c.cb.Execute(func() ([]byte, error) {
		b, err := c.store.Get(ctx, key)
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		metrics.RecordCacheError("get")
		logging.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("cache get failed")
		return res, false
	}
	if data == nil {
		metrics.RecordCacheMiss()
		return res, false
	}
	if err := json.Unmarshal(data, &res); err != nil {
		metrics.RecordCacheError("decode")
		return res, false
	}
	if res.Items == nil {
		res.Items = []Recommendation{}
	}
	metrics.RecordCacheHit()
	return res, true
}

// Put 写入缓存。
func (c *ResultCache) Put(ctx context.Context, key string, res Result) {
	data, err := json.Marshal(res)
	if err != nil {
		metrics.RecordCacheError("encode")
		return
	}
	_, err = c.cb.Execute(func() ([]byte, error) {
		return nil, c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil {
		metrics.RecordCacheError("set")
		logging.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Ping 探活底层存储（若支持）。
func (c *ResultCache) Ping(ctx context.Context) error {
	if hc, ok := c.store.(core.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}

func personalityKey(metric string, v core.PersonalityVector, limit int) string {
	return fmt.Sprintf("p:%s:%s:%d", metric, vectorKey(v), limit)
}

func neighborsKey(metric string, v core.PersonalityVector, k int) string {
	return fmt.Sprintf("n:%s:%s:%d", metric, vectorKey(v), k)
}

// vectorKey 用最短可往返的十进制表示各维度，不同的 float64 得到不同的 key。
func vectorKey(v core.PersonalityVector) string {
	parts := make([]string, 0, len(core.Traits))
	for _, x := range v.Slice() {
		parts = append(parts, strconv.FormatFloat(x, 'g', -1, 64))
	}
	return strings.Join(parts, ":")
}

func selectionKey(ids []string, limit int) string {
	data, _ := json.Marshal(ids)
	return fmt.Sprintf("s:%d:%s", limit, data)
}
