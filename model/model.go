// Package model 定义树模型集成（Ensemble）的边界以及内置实现。
//
// 量化与数据集构建不关心树的结构：任何实现 Ensemble 的评估器
// （本地回归树、远程服务、其它序列化格式）都可以直接替换。
package model

import (
	"context"

	"github.com/rushteam/treerank/dataset"
)

// Ensemble 对量化数据集打分，返回与 ds.N 等长、按文档输入顺序排列的分数。
// 加载完成后只读，实现必须支持并发调用 Evaluate。
type Ensemble interface {
	Name() string
	Evaluate(ctx context.Context, ds *dataset.Dataset) ([]float64, error)
}
