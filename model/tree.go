package model

import (
	"math"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/feature"
)

// RegressionTree 是一棵按量化码分裂的回归树。
//
// 内部节点 i：取第 SplitFeatures[i] 列的量化码 code，
// code <= 阈值走 LeftChildren[i]，否则走 RightChildren[i]。
// 子节点为负数时表示叶子，叶子下标为 ^child（即 -child-1）。
// 没有内部节点的树只有一个叶子。
type RegressionTree struct {
	Weight        float64
	SplitFeatures []int // 列下标，从 0 开始
	LeftChildren  []int
	RightChildren []int
	// Thresholds 量化空间中的整数阈值；为空时由 OriginalThresholds 按列的校准参数换算
	Thresholds []int64
	// OriginalThresholds 原始特征空间中的阈值
	OriginalThresholds []float64
	LeafOutputs        []float64
}

// NumNodes 内部节点数
func (t *RegressionTree) NumNodes() int { return len(t.SplitFeatures) }

// NumLeaves 叶子数
func (t *RegressionTree) NumLeaves() int { return len(t.LeafOutputs) }

// MaxFeature 引用的最大列下标，没有内部节点时返回 -1
func (t *RegressionTree) MaxFeature() int {
	maxFeature := -1
	for _, f := range t.SplitFeatures {
		if f > maxFeature {
			maxFeature = f
		}
	}
	return maxFeature
}

// Validate 检查树结构：数组等长、子节点引用合法、叶子数 = 内部节点数 + 1。
func (t *RegressionTree) Validate() error {
	nodes := t.NumNodes()
	if t.NumLeaves() != nodes+1 {
		return core.Errorf(core.ModuleModel, core.ErrorCodeConfig,
			"tree has %d internal nodes but %d leaves", nodes, t.NumLeaves())
	}
	if len(t.LeftChildren) != nodes || len(t.RightChildren) != nodes {
		return core.Errorf(core.ModuleModel, core.ErrorCodeConfig,
			"tree children arrays have %d/%d entries, want %d", len(t.LeftChildren), len(t.RightChildren), nodes)
	}
	if len(t.Thresholds) != nodes && len(t.OriginalThresholds) != nodes {
		return core.Errorf(core.ModuleModel, core.ErrorCodeConfig,
			"tree needs %d thresholds, got %d (original %d)", nodes, len(t.Thresholds), len(t.OriginalThresholds))
	}
	for i := 0; i < nodes; i++ {
		if t.SplitFeatures[i] < 0 {
			return core.Errorf(core.ModuleModel, core.ErrorCodeConfig, "node %d splits on negative feature", i)
		}
		for _, child := range [2]int{t.LeftChildren[i], t.RightChildren[i]} {
			if child >= 0 && (child <= i || child >= nodes) {
				return core.Errorf(core.ModuleModel, core.ErrorCodeConfig, "node %d has invalid child %d", i, child)
			}
			if child < 0 && ^child >= t.NumLeaves() {
				return core.Errorf(core.ModuleModel, core.ErrorCodeConfig, "node %d references missing leaf %d", i, ^child)
			}
		}
	}
	return nil
}

// resolveThresholds 返回量化空间的阈值。
// 只有原始阈值时按分裂列的校准参数量化；落在对数定义域以下的阈值
// 视为比任何取值都小，该节点恒走右子树。
func (t *RegressionTree) resolveThresholds(stats func(f int) feature.Statistics) []int64 {
	if len(t.Thresholds) == t.NumNodes() {
		return t.Thresholds
	}
	out := make([]int64, t.NumNodes())
	for i, v := range t.OriginalThresholds {
		code, err := feature.Quantize(v, stats(t.SplitFeatures[i]))
		if err != nil {
			code = math.MinInt64
		}
		out[i] = code
	}
	return out
}

// leaf 第 d 个文档落入的叶子下标；codes[f] 为第 f 列解码后的量化码。
// 子节点下标严格递增（Validate 保证），遍历必然终止。
func (t *RegressionTree) leaf(codes [][]int64, thresholds []int64, d int) int {
	if t.NumNodes() == 0 {
		return 0
	}
	node := 0
	for node >= 0 {
		if codes[t.SplitFeatures[node]][d] <= thresholds[node] {
			node = t.LeftChildren[node]
		} else {
			node = t.RightChildren[node]
		}
	}
	return ^node
}
