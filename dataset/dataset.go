// Package dataset 把一批文档的原始特征量化成按列存储的分桶数据集，供树模型打分。
//
// 数据流：原始特征矩阵 → 逐值量化 → 逐特征选择分桶存储 → 列式数据集。
// 数据集只属于一次打分请求，请求结束即丢弃。
package dataset

import "github.com/rushteam/treerank/feature"

// Feature 数据集中的一列。
type Feature struct {
	// Name 列序号（从 1 开始）的字符串形式，与模型文件中的特征编号一致
	Name string
	// Bins 每个文档的分桶下标
	Bins *Bins
	// UpperBounds 当前批次的取值分布（升序、含 0），分桶下标 i 对应量化码 UpperBounds[i]
	UpperBounds []int64
	// Stats 量化该列时使用的校准参数，评估器据此把原始阈值换算到量化空间
	Stats feature.Statistics
}

// Bin 第 d 个文档的分桶下标
func (f *Feature) Bin(d int) int { return f.Bins.Get(d) }

// Code 第 d 个文档的量化码
func (f *Feature) Code(d int) int64 { return f.UpperBounds[f.Bins.Get(d)] }

// Codes 解码整列的量化码到 dst（容量不足时重新分配）。
func (f *Feature) Codes(dst []int64) []int64 {
	n := f.Bins.Len()
	if cap(dst) < n {
		dst = make([]int64, n)
	}
	dst = dst[:n]
	if f.Bins.Kind() == StorageNull {
		for d := range dst {
			dst[d] = f.UpperBounds[0]
		}
		return dst
	}
	idx := f.Bins.Decode(nil)
	for d, b := range idx {
		dst[d] = f.UpperBounds[b]
	}
	return dst
}

// Dataset 一次打分请求的列式量化数据集。
type Dataset struct {
	Features []*Feature
	// Targets 每文档一个目标值；推理阶段没有真实标签，恒为 0
	Targets []float64
	// GroupBoundaries 排序分组的起始下标；整批文档视为一组，固定为 [0]
	GroupBoundaries []int
	// N 文档数
	N int
}

// FeatureCount 列数
func (ds *Dataset) FeatureCount() int { return len(ds.Features) }

// Feature 按名字查找列，找不到返回 nil
func (ds *Dataset) Feature(name string) *Feature {
	for _, f := range ds.Features {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// StorageSummary 统计各存储形态的列数，用于观测
func (ds *Dataset) StorageSummary() map[StorageKind]int {
	summary := make(map[StorageKind]int, 4)
	for _, f := range ds.Features {
		summary[f.Bins.Kind()]++
	}
	return summary
}
