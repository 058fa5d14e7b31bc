// Package builders 注册内置 Node 的配置构建器，使用时匿名导入即可。
package builders

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/treerank/config"
	"github.com/rushteam/treerank/feast"
	"github.com/rushteam/treerank/feature"
	"github.com/rushteam/treerank/filter"
	"github.com/rushteam/treerank/pipeline"
	"github.com/rushteam/treerank/pkg/conv"
	"github.com/rushteam/treerank/rank"
	"github.com/rushteam/treerank/rerank"
)

// LoadTimeout 构建 rank.forest 时加载模型的超时
var LoadTimeout = 30 * time.Second

func init() {
	config.Register("rank.forest", BuildForestNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("filter", BuildFilterNode)
	config.Register("feature.feast", BuildFeastNode)
}

// SettingsFromMap 以默认配置为底，覆盖 node 配置中出现的字段
func SettingsFromMap(cfg map[string]any) config.Settings {
	s := config.DefaultSettings()
	s.ModelPath = conv.ConfigGet(cfg, "model_path", s.ModelPath)
	s.StatisticsPath = conv.ConfigGet(cfg, "statistics_path", s.StatisticsPath)
	s.ColumnsPath = conv.ConfigGet(cfg, "columns_path", s.ColumnsPath)
	s.ScoreIsFeature = conv.ConfigGet(cfg, "score_is_feature", s.ScoreIsFeature)
	s.ModelSource = conv.ConfigGet(cfg, "model_source", s.ModelSource)
	s.ModelKeyPrefix = conv.ConfigGet(cfg, "model_key_prefix", s.ModelKeyPrefix)
	s.RedisAddr = conv.ConfigGet(cfg, "redis_addr", s.RedisAddr)
	s.RedisDB = int(conv.ConfigGetInt64(cfg, "redis_db", int64(s.RedisDB)))
	s.RemoteEndpoint = conv.ConfigGet(cfg, "remote_endpoint", s.RemoteEndpoint)
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		s.HTTPTimeout = time.Duration(sec) * time.Second
	}
	return s
}

// BuildForestNode 配置示例：
//
//	type: rank.forest
//	config:
//	  model_path: /models/ranker.xml
//	  columns: [bm25, price, ctr]
//	  score_is_feature: true
//	  group_key: query_id
func BuildForestNode(cfg map[string]any) (pipeline.Node, error) {
	s := SettingsFromMap(cfg)
	if err := s.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), LoadTimeout)
	defer cancel()
	scorer, cols, err := s.Scorer(ctx, nil)
	if err != nil {
		return nil, err
	}
	if names := conv.SliceAnyToString(cfg["columns"]); len(names) > 0 {
		cols = feature.NewColumns(names...)
	}
	if cols.Len() == 0 {
		return nil, fmt.Errorf("rank.forest needs columns or columns_path")
	}
	if err := config.CheckColumns(scorer, cols); err != nil {
		return nil, err
	}

	return &rank.ForestNode{
		Scorer:   scorer,
		Columns:  cols,
		GroupKey: conv.ConfigGet(cfg, "group_key", ""),
	}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N:        int(conv.ConfigGetInt64(cfg, "n", 0)),
		GroupKey: conv.ConfigGet(cfg, "group_key", ""),
	}, nil
}

func BuildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}, Strict: conv.ConfigGet(cfg, "strict", false)}, nil
}

// BuildFilterNode 组合多个过滤器：
//
//	filters:
//	  - type: blacklist
//	    item_ids: [d1, d2]
//	  - type: expr
//	    expr: item.score > 0.1
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
			filters = append(filters, filter.NewBlacklistFilter(conv.SliceAnyToString(filterMap["item_ids"])))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters, Strict: conv.ConfigGet(cfg, "strict", false)}, nil
}

// BuildFeastNode 配置示例：
//
//	type: feature.feast
//	config:
//	  endpoint: feast-serving:6565
//	  project: search
//	  entity_key: doc_id
//	  features: [doc_stats:ctr, doc_stats:clicks]
func BuildFeastNode(cfg map[string]any) (pipeline.Node, error) {
	endpoint := conv.ConfigGet(cfg, "endpoint", "")
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint not found")
	}
	features := conv.SliceAnyToString(cfg["features"])
	if len(features) == 0 {
		return nil, fmt.Errorf("features not found")
	}
	project := conv.ConfigGet(cfg, "project", "")

	var opts []feast.ClientOption
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		opts = append(opts, feast.WithTimeout(time.Duration(sec)*time.Second))
	}
	if token := conv.ConfigGet(cfg, "token", ""); token != "" {
		opts = append(opts, feast.WithAuth(&feast.AuthConfig{Type: "static", Token: token, TLS: conv.ConfigGet(cfg, "tls", false)}))
	}
	client, err := feast.NewGrpcClientFromEndpoint(endpoint, project, opts...)
	if err != nil {
		return nil, err
	}

	return &feast.EnrichNode{
		Client:        client,
		Features:      features,
		EntityKey:     conv.ConfigGet(cfg, "entity_key", "doc_id"),
		EntityMetaKey: conv.ConfigGet(cfg, "entity_meta_key", ""),
		Project:       project,
		KeepViewName:  conv.ConfigGet(cfg, "keep_view_name", false),
		Overwrite:     conv.ConfigGet(cfg, "overwrite", false),
	}, nil
}
