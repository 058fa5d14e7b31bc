package dataset

import (
	"strconv"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/feature"
)

// Build 把按特征主序的原始特征矩阵 raw[f][d] 量化为列式数据集。
//
//  1. 逐文档、逐特征量化，写入按文档主序的中间矩阵 codes[d][f]
//  2. 每个特征列做分桶选择（取值分布 + 存储形态 + 分桶下标）
//  3. 组装列：分桶、取值分布作为分裂上界、从 1 开始的列名、校准参数
//  4. 目标值全 0，分组为整批一组
//
// 任一值超出对数定义域或任一特征取值过多时整体失败，不返回部分结果。
// raw 与 stats 只读。
func Build(n, featureCount int, raw [][]float64, stats feature.StatisticsSet) (*Dataset, error) {
	if err := validate(n, featureCount, raw, stats); err != nil {
		return nil, err
	}

	codes := make([][]int64, n)
	for d := 0; d < n; d++ {
		row := make([]int64, featureCount)
		for f := 0; f < featureCount; f++ {
			code, err := feature.Quantize(raw[f][d], stats[f])
			if err != nil {
				return nil, core.WrapError(core.ModuleDataset, core.ErrorCodeCalibration,
					"feature "+strconv.Itoa(f+1)+" document "+strconv.Itoa(d), err)
			}
			row[f] = code
		}
		codes[d] = row
	}

	features := make([]*Feature, featureCount)
	column := make([]int64, n)
	for f := 0; f < featureCount; f++ {
		for d := 0; d < n; d++ {
			column[d] = codes[d][f]
		}
		distribution, bins, err := SelectBins(f, column)
		if err != nil {
			return nil, err
		}
		features[f] = &Feature{
			Name:        strconv.Itoa(f + 1),
			Bins:        bins,
			UpperBounds: distribution,
			Stats:       stats[f],
		}
	}

	return &Dataset{
		Features:        features,
		Targets:         make([]float64, n),
		GroupBoundaries: []int{0},
		N:               n,
	}, nil
}

func validate(n, featureCount int, raw [][]float64, stats feature.StatisticsSet) error {
	if n < 0 || featureCount < 0 {
		return core.Errorf(core.ModuleDataset, core.ErrorCodeInvalidInput,
			"negative size: n=%d featureCount=%d", n, featureCount)
	}
	if len(raw) < featureCount {
		return core.Errorf(core.ModuleDataset, core.ErrorCodeInvalidInput,
			"feature matrix has %d columns, want %d", len(raw), featureCount)
	}
	if len(stats) < featureCount {
		return core.Errorf(core.ModuleDataset, core.ErrorCodeInvalidInput,
			"statistics cover %d features, want %d", len(stats), featureCount)
	}
	for f := 0; f < featureCount; f++ {
		if len(raw[f]) < n {
			return core.Errorf(core.ModuleDataset, core.ErrorCodeInvalidInput,
				"feature %d has %d values, want %d", f+1, len(raw[f]), n)
		}
	}
	return nil
}
