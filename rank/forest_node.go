// Package rank 提供用树模型给候选文档打分并排序的 Node。
package rank

import (
	"context"
	"sort"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/feature"
	"github.com/rushteam/treerank/metrics"
	"github.com/rushteam/treerank/pipeline"
	"github.com/rushteam/treerank/pkg/utils"
	"github.com/rushteam/treerank/scoring"
)

// ForestNode 用 scoring.Scorer 给候选文档重新打分。
//   - 按 Meta[GroupKey] 把文档分成若干查询组（GroupKey 为空时整批一组），组间顺序不变
//   - 每组按 Columns 组装原始特征矩阵，item.Score 作为已有分数传入
//   - 写回 item.Score，写入 labels：rank_model
//   - 组内按分数降序稳定排序
//   - 缺失特征按 0 填充，并计入 treerank_feature_missing_total
//
// 各组依次打分；任一组失败则整批失败，item 分数保持原样。
type ForestNode struct {
	Scorer   *scoring.Scorer
	Columns  *feature.Columns
	GroupKey string
}

func (n *ForestNode) Name() string        { return "rank.forest" }
func (n *ForestNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ForestNode) Process(
	ctx context.Context,
	_ *core.RerankContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Scorer == nil || len(items) == 0 {
		return items, nil
	}

	groups := n.group(items)
	scores := make([][]float64, len(groups))
	for g, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in := make([]float64, len(group))
		for d, it := range group {
			in[d] = it.Score
		}
		for f, missing := range n.Columns.MissingCounts(group) {
			if missing > 0 {
				metrics.FeatureMissing.WithLabelValues(n.Columns.Names[f]).Add(float64(missing))
			}
		}
		out := make([]float64, len(group))
		if err := n.Scorer.Score(ctx, len(group), in, n.Columns.Len(), n.Columns.Matrix(group), out); err != nil {
			return nil, err
		}
		scores[g] = out
	}

	label := utils.Label{Value: n.Scorer.ModelName(), Source: "rank"}
	result := make([]*core.Item, 0, len(items))
	for g, group := range groups {
		for d, it := range group {
			it.Score = scores[g][d]
			it.PutLabel("rank_model", label)
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Score > group[j].Score
		})
		result = append(result, group...)
	}
	return result, nil
}

// group 按首次出现顺序分组，跳过 nil
func (n *ForestNode) group(items []*core.Item) [][]*core.Item {
	if n.GroupKey == "" {
		group := make([]*core.Item, 0, len(items))
		for _, it := range items {
			if it != nil {
				group = append(group, it)
			}
		}
		return [][]*core.Item{group}
	}

	index := make(map[string]int)
	var groups [][]*core.Item
	for _, it := range items {
		if it == nil {
			continue
		}
		key := it.MetaString(n.GroupKey)
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], it)
	}
	return groups
}
