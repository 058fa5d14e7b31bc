package feast

import (
	"context"
	"strings"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/pipeline"
)

// EnrichNode 从 Feast 拉取文档的在线特征，写入 item.Features，供 rank.forest 组装特征矩阵。
//   - 实体 ID 取自 item.ID，或 item.Meta[EntityMetaKey]（不为空时）
//   - 特征名默认去掉 "view:" 前缀，例如 "doc_stats:ctr" 写为 "ctr"
//   - 上游已有的同名特征默认保留，Overwrite 为 true 时覆盖
//
// 拉取失败时整批失败，不做部分补全。
type EnrichNode struct {
	Client   Client
	Features []string
	// EntityKey Feast 实体列名，例如 "doc_id"
	EntityKey     string
	EntityMetaKey string
	Project       string
	KeepViewName  bool
	Overwrite     bool
}

func (n *EnrichNode) Name() string        { return "feature.feast" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RerankContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Client == nil || len(n.Features) == 0 || len(items) == 0 {
		return items, nil
	}

	targets := make([]*core.Item, 0, len(items))
	rows := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		id := it.ID
		if n.EntityMetaKey != "" {
			id = it.MetaString(n.EntityMetaKey)
		}
		if id == "" {
			continue
		}
		targets = append(targets, it)
		rows = append(rows, map[string]any{n.EntityKey: id})
	}
	if len(rows) == 0 {
		return items, nil
	}

	resp, err := n.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   n.Features,
		EntityRows: rows,
		Project:    n.Project,
	})
	if err != nil {
		return nil, core.WrapError(core.ModuleFeature, core.ErrorCodeUnavailable, "feast online features", err)
	}
	if len(resp.FeatureVectors) != len(targets) {
		return nil, core.Errorf(core.ModuleFeature, core.ErrorCodeConsistency,
			"feast returned %d vectors for %d documents", len(resp.FeatureVectors), len(targets))
	}

	for i, it := range targets {
		if it.Features == nil {
			it.Features = make(map[string]float64, len(resp.FeatureVectors[i].Values))
		}
		for ref, v := range resp.FeatureVectors[i].Values {
			name := n.columnName(ref)
			if _, exists := it.Features[name]; exists && !n.Overwrite {
				continue
			}
			it.Features[name] = v
		}
	}
	return items, nil
}

func (n *EnrichNode) columnName(ref string) string {
	if n.KeepViewName {
		return ref
	}
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
