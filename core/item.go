package core

import "github.com/rushteam/treerank/pkg/utils"

// Item 是重排链路中的统一承载结构：一个候选文档的特征、分数、元信息、标签。
// Score 进入重排时是上游检索的相关性分数，重排后被模型分数覆盖；
// Features 由上游检索阶段产出（特征名 -> 原始值）。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// MetaString 读取字符串类型的 Meta 字段，不存在或类型不符返回 ""。
func (it *Item) MetaString(key string) string {
	if it == nil || it.Meta == nil {
		return ""
	}
	switch v := it.Meta[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return utils.FormatAny(v)
	}
}
