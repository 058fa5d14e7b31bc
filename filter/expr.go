package filter

import (
	"context"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述要“保留”的文档，表达式为 false 时过滤。
// 例如 `item.score > 0.1 && item.meta.lang == rctx.params.lang`
type ExprFilter struct {
	program *dsl.Program
}

// NewExprFilter 编译表达式，编译失败直接返回错误
func NewExprFilter(expr string) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: p}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RerankContext, item *core.Item) (bool, error) {
	keep, err := f.program.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
