// Package engine 把参考数据、召回 Pipeline 与结果缓存组装成三个对外操作：
// 按人格推荐、按已选歌曲推荐、查找相似用户。
//
// 所有操作都返回 Result，不向边界抛错：查询无效时返回空列表与 Reason。
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rushteam/big5rec/config"
	"github.com/rushteam/big5rec/config/builders"
	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/dataset"
	"github.com/rushteam/big5rec/feature"
	"github.com/rushteam/big5rec/filter"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/logging"
	"github.com/rushteam/big5rec/pkg/metrics"
	"github.com/rushteam/big5rec/rank"
	"github.com/rushteam/big5rec/recall"
	"github.com/rushteam/big5rec/rerank"
)

// Endpoint 名称，用于日志与指标。
const (
	EndpointPersonality = "personality"
	EndpointSelection   = "selection"
	EndpointNeighbors   = "neighbors"
)

// BlacklistKey 是 Store 中动态黑名单的 key。
const BlacklistKey = "blacklist"

// Engine 是推荐引擎。构造后只读，可被多个请求并发使用。
type Engine struct {
	settings *Settings
	data     *dataset.ReferenceData
	cache    *ResultCache

	byPersonality *pipeline.Pipeline
	bySelection   *pipeline.Pipeline
	neighbors     *pipeline.Pipeline
}

// Option 定制 Engine。
type Option func(*Engine)

// WithCache 启用结果缓存。
func WithCache(c *ResultCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithPersonalityPipeline 替换按人格推荐的 Pipeline。
func WithPersonalityPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.byPersonality = p }
}

// New 用已加载的参考数据创建引擎。data 可以为空（降级为规则推荐）。
func New(data *dataset.ReferenceData, s *Settings, opts ...Option) (*Engine, error) {
	if s == nil {
		s = DefaultSettings()
	}
	if data == nil {
		data = &dataset.ReferenceData{}
	}
	e := &Engine{settings: s, data: data}
	for _, opt := range opts {
		opt(e)
	}

	rules, err := e.loadRules()
	if err != nil {
		return nil, err
	}
	rulesRecall, err := recall.NewRulesRecall(rules)
	if err != nil {
		return nil, err
	}

	if e.byPersonality == nil {
		if s.PipelineFile != "" {
			builders.Bind(e.resources(rules))
			p, err := config.LoadPipeline(s.PipelineFile)
			if err != nil {
				return nil, err
			}
			e.byPersonality = p
		} else {
			e.byPersonality = e.personalityPipeline(rulesRecall)
		}
	}
	e.bySelection = e.selectionPipeline()
	e.neighbors = e.neighborsPipeline()

	for _, p := range []*pipeline.Pipeline{e.byPersonality, e.bySelection, e.neighbors} {
		p.Hooks = append(p.Hooks, func(n pipeline.Node, _, _ int, elapsed time.Duration, err error) {
			metrics.RecordNode(n.Name(), string(n.Kind()), elapsed, err)
		})
	}
	return e, nil
}

// Open 按配置加载参考数据与缓存后端并创建引擎。
func Open(ctx context.Context, s *Settings) (*Engine, error) {
	data, err := dataset.LoadReferenceData(ctx, s.Data, s.LoadOptions())
	if err != nil {
		return nil, err
	}
	metrics.SetReferenceRows("songs", data.Songs.Len())
	metrics.SetReferenceRows("users", data.Users.Len())
	metrics.SetReferenceRows("catalog", data.Catalog.Len())
	if data.Empty() {
		logging.Ctx(ctx).Warn().Msg("no reference data loaded, serving rule-based recommendations only")
	}

	var opts []Option
	cs, err := NewCacheStore(ctx, s.Cache)
	if err != nil {
		// 缓存不可用时不缓存
		logging.Ctx(ctx).Warn().Err(err).Str("backend", s.Cache.Backend).Msg("result cache disabled")
	} else if cs != nil {
		opts = append(opts, WithCache(NewResultCache(cs, s.Cache)))
	}
	return New(data, s, opts...)
}

// Close 释放缓存后端。
func (e *Engine) Close() error {
	if e.cache != nil {
		return e.cache.Store().Close()
	}
	return nil
}

// Ping 探活缓存后端。
func (e *Engine) Ping(ctx context.Context) error {
	if e.cache != nil {
		return e.cache.Ping(ctx)
	}
	return nil
}

// Data 返回参考数据（只读）。
func (e *Engine) Data() *dataset.ReferenceData { return e.data }

// Settings 返回引擎配置。
func (e *Engine) Settings() *Settings { return e.settings }

func (e *Engine) loadRules() (*recall.RuleSet, error) {
	if e.settings.RulesFile == "" {
		return recall.DefaultRules(), nil
	}
	rs, err := recall.LoadRulesFromYAML(e.settings.RulesFile)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (e *Engine) resources(rules *recall.RuleSet) *builders.Resources {
	res := &builders.Resources{
		Songs:  e.data.Songs,
		Users:  e.data.Users,
		Matrix: e.data.Matrix,
		Rules:  rules,
	}
	if e.data.Catalog != nil {
		res.Catalog = e.data.Catalog
	}
	if e.cache != nil {
		res.Blacklist = filter.NewStoreAdapter(e.cache.Store())
	}
	return res
}

func (e *Engine) catalog() feature.CatalogLookup {
	if e.data.Catalog == nil {
		return nil
	}
	return e.data.Catalog
}

func (e *Engine) blacklistFilter() filter.Filter {
	var bs filter.BlacklistStore
	key := ""
	if e.cache != nil {
		bs = filter.NewStoreAdapter(e.cache.Store())
		key = BlacklistKey
	}
	return filter.NewBlacklistFilter(e.settings.Recall.Blacklist, bs, key)
}

// personalityPipeline：
// Fallback(Fanout[content, u2i], rules) -> catalog -> blacklist -> dedup -> [diversity] -> topn
func (e *Engine) personalityPipeline(rules *recall.RulesRecall) *pipeline.Pipeline {
	rs := e.settings.Recall
	var sources []recall.Source
	if e.data.Songs.Len() > 0 {
		sources = append(sources, &recall.ContentRecall{
			Table:   e.data.Songs,
			TopK:    rs.TopK,
			Columns: rs.DescriptorColumns,
			Metric:  rs.Metric,
		})
	}
	if e.data.Users.Len() > 0 {
		sources = append(sources, &recall.LikedRecall{
			Table: e.data.Users,
			Options: recall.LikedOptions{
				Neighbors:   rs.Neighbors,
				Threshold:   rs.LikedThreshold,
				PerNeighbor: rs.LikedPerNeighbor,
				Limit:       rs.MaxResults,
			},
		})
	}

	nodes := []pipeline.Node{
		&recall.Fallback{
			Primary: &recall.Fanout{
				Sources:       sources,
				Dedup:         true,
				Timeout:       rs.SourceTimeout,
				MergeStrategy: recall.PriorityMergeStrategy{},
			},
			Secondary: rules,
		},
		&feature.CatalogEnrichNode{Catalog: e.catalog()},
		&filter.FilterNode{Filters: []filter.Filter{e.blacklistFilter()}},
		&rerank.DedupNode{},
	}
	if rs.Diversity {
		nodes = append(nodes, &rerank.Diversity{})
	}
	nodes = append(nodes, &rerank.TopNNode{N: rs.MaxResults})
	return &pipeline.Pipeline{Name: EndpointPersonality, Nodes: nodes}
}

// selectionPipeline：i2i -> catalog -> 去掉已选 -> blacklist -> dedup -> topn
func (e *Engine) selectionPipeline() *pipeline.Pipeline {
	rs := e.settings.Recall
	return &pipeline.Pipeline{
		Name: EndpointSelection,
		Nodes: []pipeline.Node{
			&recall.ItemCFRecall{Matrix: e.data.Matrix, PerItemLimit: rs.PerItemLimit},
			&feature.CatalogEnrichNode{Catalog: e.catalog()},
			&filter.FilterNode{Filters: []filter.Filter{&filter.SelectedFilter{}, e.blacklistFilter()}},
			&rerank.DedupNode{},
			&rerank.TopNNode{N: rs.MaxResults},
		},
	}
}

// neighborsPipeline：neighbor -> score 排序 -> topn
func (e *Engine) neighborsPipeline() *pipeline.Pipeline {
	rs := e.settings.Recall
	return &pipeline.Pipeline{
		Name: EndpointNeighbors,
		Nodes: []pipeline.Node{
			&recall.NeighborRecall{Table: e.data.Users, K: rs.MaxResults, MetricName: rs.Metric},
			&rank.ScoreNode{},
			&rerank.TopNNode{N: rs.MaxResults},
		},
	}
}

// clampLimit：<= 0 取 def，超过 MaxResults 截到 MaxResults。
func (e *Engine) clampLimit(limit, def int) int {
	upper := e.settings.Recall.MaxResults
	if limit <= 0 {
		limit = def
	}
	if limit > upper {
		return upper
	}
	return limit
}

// RecommendByPersonality 按人格向量推荐歌曲。
//
// 向量无效时立即返回 invalid_input / degenerate_vector；
// 参考数据召回为空时回退到人格规则，Reason 为 fallback。
func (e *Engine) RecommendByPersonality(ctx context.Context, v core.PersonalityVector, limit int) (res Result) {
	start := time.Now()
	defer func() { e.observe(ctx, EndpointPersonality, res, start) }()

	if err := v.Validate(); err != nil {
		return emptyResult(reasonFor(err))
	}
	limit = e.clampLimit(limit, e.settings.Recall.MaxResults)

	key := personalityKey(e.settings.Recall.Metric, v, limit)
	if cached, ok := e.cacheGet(ctx, key); ok {
		return cached
	}

	rctx := &core.RecommendContext{
		Scene:       EndpointPersonality,
		Personality: &v,
		Params:      map[string]any{"limit": limit},
	}
	items, err := e.byPersonality.Run(ctx, rctx, nil)
	if err != nil {
		return e.failed(ctx, err)
	}

	res = Result{Items: toRecommendations(items), Reason: ReasonOK}
	_, fellBack := rctx.GetLabel(recall.LabelFallback)
	_, mismatch := rctx.GetLabel("schema_mismatch")
	switch {
	case len(res.Items) == 0 && mismatch:
		res.Reason = ReasonSchemaMismatch
	case len(res.Items) == 0:
		res.Reason = ReasonNoResults
	case fellBack:
		res.Reason = ReasonFallback
	}
	e.cachePut(ctx, key, res)
	return res
}

// RecommendBySelection 按用户选中的歌曲推荐相似歌曲。
// 相似度矩阵中不存在的 ID 被跳过并在 Skipped 中报告，Reason 为 partial。
func (e *Engine) RecommendBySelection(ctx context.Context, selectedIDs []string, limit int) (res Result) {
	start := time.Now()
	defer func() { e.observe(ctx, EndpointSelection, res, start) }()

	if len(selectedIDs) == 0 {
		return emptyResult(ReasonInvalidInput)
	}
	if e.data.Matrix == nil {
		return emptyResult(ReasonNoReferenceData)
	}
	limit = e.clampLimit(limit, e.settings.Recall.MaxResults)

	key := selectionKey(selectedIDs, limit)
	if cached, ok := e.cacheGet(ctx, key); ok {
		return cached
	}

	rctx := &core.RecommendContext{
		Scene:       EndpointSelection,
		SelectedIDs: append([]string(nil), selectedIDs...),
		Params:      map[string]any{"limit": limit},
	}
	items, err := e.bySelection.Run(ctx, rctx, nil)
	if err != nil {
		return e.failed(ctx, err)
	}

	res = Result{Items: toRecommendations(items), Reason: ReasonOK, Skipped: skippedFrom(rctx)}
	switch {
	case len(res.Items) == 0:
		res.Reason = ReasonNoResults
	case len(res.Skipped) > 0:
		res.Reason = ReasonPartial
	}
	e.cachePut(ctx, key, res)
	return res
}

// Neighbors 返回与查询人格最接近的 k 个用户。
func (e *Engine) Neighbors(ctx context.Context, v core.PersonalityVector, k int) (res Result) {
	start := time.Now()
	defer func() { e.observe(ctx, EndpointNeighbors, res, start) }()

	if err := v.Validate(); err != nil {
		return emptyResult(reasonFor(err))
	}
	if e.data.Users.Len() == 0 {
		return emptyResult(ReasonNoReferenceData)
	}
	k = e.clampLimit(k, e.settings.Recall.Neighbors)

	key := neighborsKey(e.settings.Recall.Metric, v, k)
	if cached, ok := e.cacheGet(ctx, key); ok {
		return cached
	}

	rctx := &core.RecommendContext{
		Scene:       EndpointNeighbors,
		Personality: &v,
		Params:      map[string]any{"limit": k},
	}
	items, err := e.neighbors.Run(ctx, rctx, nil)
	if err != nil {
		return e.failed(ctx, err)
	}
	res = Result{Items: toRecommendations(items), Reason: ReasonOK}
	if len(res.Items) == 0 {
		res.Reason = ReasonNoResults
	}
	e.cachePut(ctx, key, res)
	return res
}

func (e *Engine) failed(ctx context.Context, err error) Result {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return emptyResult(ReasonTimeout)
	}
	logging.Ctx(ctx).Warn().Err(err).Msg("recommendation failed")
	return emptyResult(reasonFor(err))
}

func (e *Engine) cacheGet(ctx context.Context, key string) (Result, bool) {
	if e.cache == nil {
		return Result{}, false
	}
	return e.cache.Get(ctx, key)
}

func (e *Engine) cachePut(ctx context.Context, key string, res Result) {
	if e.cache == nil {
		return
	}
	e.cache.Put(ctx, key, res)
}

func (e *Engine) observe(ctx context.Context, endpoint string, res Result, start time.Time) {
	elapsed := time.Since(start)
	metrics.RecordRequest(endpoint, string(res.Reason), elapsed)
	for _, s := range res.Skipped {
		metrics.RecordSkipped(s.Reason, 1)
	}
	logging.Ctx(ctx).Debug().
		Str("endpoint", endpoint).
		Str("reason", string(res.Reason)).
		Int("items", len(res.Items)).
		Int("skipped", len(res.Skipped)).
		Dur("elapsed", elapsed).
		Msg("recommendation served")
}
