package core

import "github.com/rushteam/treerank/pkg/utils"

// RerankContext 承载一次重排请求的查询/场景信息，贯穿整个 Pipeline 透传。
type RerankContext struct {
	QueryID string
	Query   string
	UserID  string
	Scene   string

	// Labels 是请求级标签，可驱动 Pipeline 行为（例如实验桶）
	Labels map[string]utils.Label

	// Params 请求级参数，例如 rerank_depth、experiment 等
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RerankContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RerankContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
