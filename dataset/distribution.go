package dataset

import (
	"fmt"
	"slices"

	"github.com/rushteam/treerank/core"
)

// ValueDistribution 返回一组量化码去重后的升序数组，且一定包含 0。
//
// 0 是“无值/基线”码：即使没有任何文档量化为 0 也会占据一个桶。
// 分布只在当前批次内有效，不跨批次保存。
func ValueDistribution(codes []int64) []int64 {
	values := make([]int64, 0, len(codes)+1)
	values = append(values, 0)
	values = append(values, codes...)
	slices.Sort(values)
	return slices.Compact(values)
}

// SelectStorage 按不同取值个数 k 选择存储形态。
// 调用方传入的分布必须包含 0，因此 k == 1 即“只有 0”。
func SelectStorage(k int) (StorageKind, error) {
	switch {
	case k <= 1:
		return StorageNull, nil
	case k <= 2:
		return StorageBit, nil
	case k <= MaxByteValues:
		return StorageByte, nil
	case k <= MaxShortValues:
		return StorageShort, nil
	default:
		return StorageNull, core.Errorf(core.ModuleDataset, core.ErrorCodeCapacity,
			"%d distinct values exceed the supported maximum of %d", k, MaxShortValues)
	}
}

// SelectBins 为一个特征列（n 个文档的量化码）生成取值分布与分桶存储。
// feature 为特征序号（0 起），仅用于错误信息。
//
// 每个文档的分桶下标 = 其量化码在分布中的位置（二分查找，分布无重复）。
func SelectBins(feature int, codes []int64) ([]int64, *Bins, error) {
	distribution := ValueDistribution(codes)
	kind, err := SelectStorage(len(distribution))
	if err != nil {
		return nil, nil, core.WrapError(core.ModuleDataset, core.ErrorCodeCapacity,
			fmt.Sprintf("feature %d", feature+1), err)
	}

	bins := NewBins(kind, len(codes))
	if kind == StorageNull {
		return distribution, bins, nil
	}
	idx := make([]int, len(codes))
	for d, code := range codes {
		idx[d], _ = slices.BinarySearch(distribution, code)
	}
	bins.fill(idx)
	return distribution, bins, nil
}
