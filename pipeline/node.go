package pipeline

import (
	"context"

	"github.com/rushteam/treerank/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindFeature Kind = "feature" // 特征阶段：补全文档特征
	KindFilter  Kind = "filter"  // 过滤阶段：剔除不符合约束的候选
	KindRank    Kind = "rank"    // 排序阶段：对候选打分并排序
	KindReRank  Kind = "rerank"  // 重排阶段：在排序结果上做截断/业务调优
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RerankContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据配置构建 Node
type NodeBuilder func(cfg map[string]any) (Node, error)
