// Package dsl 基于 CEL（Common Expression Language）的文档表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/treerank/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的布尔表达式，可被并发复用。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.rank_model == "ranker.xml"
//   - 数值：item.score > 0.7 / item.features.price <= 100.0
//   - 逻辑：item.meta.lang == "en" && item.score > 0.8
//   - 存在性：has(label.rank_model)
//   - 请求：rctx.scene == "search" / rctx.query.contains("shoe")
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，空表达式恒为 true
func Compile(expr string) (*Program, error) {
	p := &Program{expr: expr}
	if expr == "" {
		return p, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	p.prg = prg
	return p, nil
}

// String 原始表达式
func (p *Program) String() string { return p.expr }

// Match 对单个文档求值
func (p *Program) Match(item *core.Item, rctx *core.RerankContext) (bool, error) {
	if p.prg == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 编译并执行一次表达式
func Evaluate(expr string, item *core.Item, rctx *core.RerankContext) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(item, rctx)
}

func buildInput(item *core.Item, rctx *core.RerankContext) map[string]any {
	if item == nil {
		item = &core.Item{}
	}
	if rctx == nil {
		rctx = &core.RerankContext{}
	}

	// label.xxx 直接取 value
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}
	features := item.Features
	if features == nil {
		features = map[string]float64{}
	}
	meta := item.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	params := rctx.Params
	if params == nil {
		params = map[string]any{}
	}

	return map[string]any{
		"item": map[string]any{
			"id":       item.ID,
			"score":    item.Score,
			"features": features,
			"meta":     meta,
		},
		"label": labels,
		"rctx": map[string]any{
			"query_id": rctx.QueryID,
			"query":    rctx.Query,
			"user_id":  rctx.UserID,
			"scene":    rctx.Scene,
			"params":   params,
		},
	}
}
