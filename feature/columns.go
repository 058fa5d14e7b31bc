package feature

import (
	"context"
	"encoding/json"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/pkg/blob"
)

// Columns 模型训练时的特征列顺序，对应 feature_meta.json。
// 第 i 个名字对应特征统计的第 i 行、数据集的第 i 列（score 作为特征时整体后移一列）。
type Columns struct {
	Names        []string `json:"feature_columns"`
	ModelVersion string   `json:"model_version,omitempty"`
}

// NewColumns 按给定顺序创建特征列
func NewColumns(names ...string) *Columns {
	return &Columns{Names: names}
}

// Len 特征列数
func (c *Columns) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Names)
}

// Matrix 按列顺序构建按特征主序的原始特征矩阵：matrix[f][d]。
// 缺失的特征填充 0.0；nil item 同样按全 0 处理。
func (c *Columns) Matrix(items []*core.Item) [][]float64 {
	matrix := make([][]float64, c.Len())
	if c == nil {
		return matrix
	}
	for f, name := range c.Names {
		col := make([]float64, len(items))
		for d, it := range items {
			if it == nil || it.Features == nil {
				continue
			}
			col[d] = it.Features[name]
		}
		matrix[f] = col
	}
	return matrix
}

// Missing 返回 item 缺失的特征列
func (c *Columns) Missing(it *core.Item) []string {
	var missing []string
	for _, name := range c.Names {
		if _, ok := it.Features[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// MissingCounts 每列缺失该特征的文档数（nil item 计为缺失）
func (c *Columns) MissingCounts(items []*core.Item) []int {
	counts := make([]int, c.Len())
	if c == nil {
		return counts
	}
	for f, name := range c.Names {
		for _, it := range items {
			if it == nil {
				counts[f]++
				continue
			}
			if _, ok := it.Features[name]; !ok {
				counts[f]++
			}
		}
	}
	return counts
}

// LoadColumns 通过 fetcher 读取并解析 feature_meta.json
func LoadColumns(ctx context.Context, fetcher blob.Fetcher, source string) (*Columns, error) {
	if fetcher == nil {
		fetcher = blob.FileFetcher{}
	}
	data, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, core.WrapError(core.ModuleFeature, core.ErrorCodeConfig, "load feature columns "+source, err)
	}
	var cols Columns
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, core.WrapError(core.ModuleFeature, core.ErrorCodeConfig, "parse feature columns "+source, err)
	}
	if len(cols.Names) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeConfig, "feature columns empty: "+source)
	}
	return &cols, nil
}
