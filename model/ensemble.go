package model

import (
	"context"
	"strconv"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/dataset"
	"github.com/rushteam/treerank/feature"
)

// TreeEnsemble 回归树集成：文档分数 = Σ 树权重 × 叶子输出。
// 加载后只读，可被多个打分请求并发使用。
type TreeEnsemble struct {
	name       string
	Trees      []*RegressionTree
	maxFeature int
}

// NewTreeEnsemble 校验每棵树并创建集成
func NewTreeEnsemble(name string, trees []*RegressionTree) (*TreeEnsemble, error) {
	if name == "" {
		name = "regression_trees"
	}
	e := &TreeEnsemble{name: name, Trees: trees, maxFeature: -1}
	for i, t := range trees {
		if err := t.Validate(); err != nil {
			return nil, core.WrapError(core.ModuleModel, core.ErrorCodeConfig, "tree "+strconv.Itoa(i), err)
		}
		if m := t.MaxFeature(); m > e.maxFeature {
			e.maxFeature = m
		}
	}
	return e, nil
}

func (e *TreeEnsemble) Name() string { return e.name }

// FeatureCount 模型至少需要的列数
func (e *TreeEnsemble) FeatureCount() int { return e.maxFeature + 1 }

// Evaluate 对数据集中每个文档打分。
// 每个被引用的列只解码一次，之后逐树、逐文档在解码后的量化码上遍历。
func (e *TreeEnsemble) Evaluate(_ context.Context, ds *dataset.Dataset) ([]float64, error) {
	if ds == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "nil dataset")
	}
	if e.maxFeature >= ds.FeatureCount() {
		return nil, core.Errorf(core.ModuleModel, core.ErrorCodeInvalidInput,
			"model splits on feature %d but dataset has %d features", e.maxFeature+1, ds.FeatureCount())
	}

	codes := make([][]int64, ds.FeatureCount())
	for _, t := range e.Trees {
		for _, f := range t.SplitFeatures {
			if codes[f] == nil {
				codes[f] = ds.Features[f].Codes(nil)
			}
		}
	}
	stats := func(f int) feature.Statistics { return ds.Features[f].Stats }

	scores := make([]float64, ds.N)
	for _, t := range e.Trees {
		thresholds := t.resolveThresholds(stats)
		for d := 0; d < ds.N; d++ {
			scores[d] += t.Weight * t.LeafOutputs[t.leaf(codes, thresholds, d)]
		}
	}
	return scores, nil
}

var _ Ensemble = (*TreeEnsemble)(nil)
