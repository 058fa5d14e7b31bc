// Package rerank 在打分排序之后对结果做截断等调整。
package rerank

import (
	"context"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个文档。
// 通常放在 rank.forest 之后。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.ForestNode{...},    // 打分排序
//	        &rerank.TopNNode{N: 20},  // 截取 Top 20
//	    },
//	}
type TopNNode struct {
	// N 要保留的文档数量
	// 如果 N <= 0，则返回所有文档（不截断）
	N int
	// GroupKey 不为空时按 Meta[GroupKey] 分组，每组各保留 N 个
	GroupKey string
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RerankContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	if n.GroupKey == "" {
		return items[:n.N], nil
	}

	kept := make(map[string]int)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		key := it.MetaString(n.GroupKey)
		if kept[key] >= n.N {
			continue
		}
		kept[key]++
		out = append(out, it)
	}
	return out, nil
}
