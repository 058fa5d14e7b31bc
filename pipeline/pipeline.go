package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/treerank/core"
)

// Pipeline 把重排逻辑拆成可组合的 Node 链：特征补全 -> 过滤 -> 打分排序 -> 截断。
type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run 依次执行各 Node，任一 Node 失败即整体失败，不返回部分结果。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RerankContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
