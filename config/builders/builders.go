package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/big5rec/config"
	"github.com/rushteam/big5rec/feature"
	"github.com/rushteam/big5rec/filter"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/conv"
	"github.com/rushteam/big5rec/rank"
	"github.com/rushteam/big5rec/recall"
	"github.com/rushteam/big5rec/rerank"
)

func init() {
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("recall.fallback", BuildFallbackNode)
	config.Register("recall.content", sourceNode("content"))
	config.Register("recall.neighbor", sourceNode("neighbor"))
	config.Register("recall.i2i", sourceNode("i2i"))
	config.Register("recall.u2i", sourceNode("u2i"))
	config.Register("recall.rules", sourceNode("rules"))
	config.Register("filter", BuildFilterNode)
	config.Register("rank.score", BuildScoreNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.dedup", BuildDedupNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("feature.personality", BuildPersonalityNode)
	config.Register("feature.catalog", BuildCatalogNode)
}

// sourceNode 把召回源构建器包装成 Node 构建器，召回源都同时实现了 pipeline.Node。
func sourceNode(sourceType string) config.NodeBuilder {
	return func(cfg map[string]any) (pipeline.Node, error) {
		src, err := BuildSource(sourceType, cfg)
		if err != nil {
			return nil, err
		}
		node, ok := src.(pipeline.Node)
		if !ok {
			return nil, fmt.Errorf("source %s is not a node", sourceType)
		}
		return node, nil
	}
}

// BuildSource 按类型构建召回源：content / neighbor / i2i / u2i / rules。
func BuildSource(sourceType string, cfg map[string]any) (recall.Source, error) {
	res := resources()
	switch sourceType {
	case "content":
		if res.Songs == nil {
			return nil, fmt.Errorf("content source requires song table")
		}
		return &recall.ContentRecall{
			Table:   res.Songs,
			TopK:    conv.ConfigGetInt(cfg, "top_k", 0),
			Columns: conv.SliceAnyToString(cfg["columns"]),
			Metric:  conv.ConfigGet(cfg, "metric", ""),
		}, nil
	case "neighbor":
		if res.Users == nil {
			return nil, fmt.Errorf("neighbor source requires user table")
		}
		return &recall.NeighborRecall{
			Table:      res.Users,
			K:          conv.ConfigGetInt(cfg, "k", 0),
			MetricName: conv.ConfigGet(cfg, "metric", ""),
		}, nil
	case "u2i":
		if res.Users == nil {
			return nil, fmt.Errorf("u2i source requires user table")
		}
		return &recall.LikedRecall{
			Table: res.Users,
			Options: recall.LikedOptions{
				Neighbors:   conv.ConfigGetInt(cfg, "neighbors", 0),
				Threshold:   conv.ConfigGetFloat(cfg, "threshold", recall.DefaultLikedThreshold),
				PerNeighbor: conv.ConfigGetInt(cfg, "per_neighbor", 0),
				Limit:       conv.ConfigGetInt(cfg, "limit", 0),
				Columns:     conv.SliceAnyToString(cfg["columns"]),
				Ignore:      conv.SliceAnyToString(cfg["ignore"]),
			},
		}, nil
	case "i2i":
		if res.Matrix == nil {
			return nil, fmt.Errorf("i2i source requires similarity matrix")
		}
		return &recall.ItemCFRecall{
			Matrix:       res.Matrix,
			PerItemLimit: conv.ConfigGetInt(cfg, "per_item_limit", 0),
		}, nil
	case "rules":
		rs := res.Rules
		if path := conv.ConfigGet(cfg, "file", ""); path != "" {
			loaded, err := recall.LoadRulesFromYAML(path)
			if err != nil {
				return nil, err
			}
			rs = loaded
		}
		if rs != nil {
			if limit := conv.ConfigGetInt(cfg, "limit", 0); limit > 0 {
				cp := *rs
				cp.Limit = limit
				rs = &cp
			}
		}
		return recall.NewRulesRecall(rs)
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}
}

func BuildFanoutNode(cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		src, err := BuildSource(conv.ConfigGet(sourceMap, "type", ""), sourceMap)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	fanout := &recall.Fanout{
		Sources: sources,
		Dedup:   conv.ConfigGet(cfg, "dedup", true),
	}
	if ms := conv.ConfigGetInt(cfg, "timeout_ms", 0); ms > 0 {
		fanout.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n := conv.ConfigGetInt(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = n
	}
	switch conv.ConfigGet(cfg, "merge_strategy", "") {
	case "priority":
		fanout.MergeStrategy = recall.PriorityMergeStrategy{}
	case "union":
		fanout.MergeStrategy = recall.UnionMergeStrategy{}
	default:
		fanout.MergeStrategy = recall.FirstMergeStrategy{}
	}
	return fanout, nil
}

// BuildFallbackNode 配置形如 {primary: {type, config}, secondary: {type, config}}。
func BuildFallbackNode(cfg map[string]any) (pipeline.Node, error) {
	primary, err := buildNested(cfg, "primary")
	if err != nil {
		return nil, err
	}
	secondary, err := buildNested(cfg, "secondary")
	if err != nil {
		return nil, err
	}
	return &recall.Fallback{Primary: primary, Secondary: secondary}, nil
}

func buildNested(cfg map[string]any, key string) (pipeline.Node, error) {
	nc, ok := cfg[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s not found or invalid", key)
	}
	typ := conv.ConfigGet(nc, "type", "")
	inner, _ := nc["config"].(map[string]any)
	node, err := config.BuildNode(typ, inner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return node, nil
}

func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			key := conv.ConfigGet(filterMap, "key", "")
			var store filter.BlacklistStore
			if key != "" {
				store = resources().Blacklist
			}
			filters = append(filters, filter.NewBlacklistFilter(ids, store, key))
		case "selected":
			filters = append(filters, &filter.SelectedFilter{})
		case "expression":
			f, err := filter.NewExpressionFilter(
				conv.ConfigGet(filterMap, "expr", ""),
				conv.ConfigGet(filterMap, "invert", false),
			)
			if err != nil {
				return nil, fmt.Errorf("expression filter: %w", err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildScoreNode(cfg map[string]any) (pipeline.Node, error) {
	var weights map[string]float64
	if raw, ok := cfg["source_weights"].(map[string]any); ok {
		weights = make(map[string]float64, len(raw))
		for k, v := range raw {
			f, ok := conv.ToFloat64(v)
			if !ok {
				return nil, fmt.Errorf("source_weights.%s is not numeric", k)
			}
			weights[k] = f
		}
	}
	return &rank.ScoreNode{SourceWeights: weights}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("rerank.topn requires n > 0")
	}
	return &rerank.TopNNode{N: n}, nil
}

func BuildDedupNode(map[string]any) (pipeline.Node, error) {
	return &rerank.DedupNode{}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey:  conv.ConfigGet(cfg, "label_key", ""),
		MaxPerKey: conv.ConfigGetInt(cfg, "max_per_key", 0),
	}, nil
}

func BuildPersonalityNode(cfg map[string]any) (pipeline.Node, error) {
	return &feature.PersonalityNode{
		Extractor: &feature.PersonalityExtractor{Prefix: conv.ConfigGet(cfg, "prefix", "")},
	}, nil
}

func BuildCatalogNode(cfg map[string]any) (pipeline.Node, error) {
	return &feature.CatalogEnrichNode{
		Catalog:     resources().Catalog,
		DropUnknown: conv.ConfigGet(cfg, "drop_unknown", false),
		Features:    conv.ConfigGet(cfg, "features", false),
	}, nil
}
