// Package treerank 用预训练的回归树集成对检索/推荐候选做重排。
//
// 设计要点：
// - Pipeline-first: 重排逻辑通过 Node 串联（特征补全 → 过滤 → 打分排序 → 截断）
// - 量化打分: 原始特征按校准参数量化为整数码，再按列选择最紧凑的分桶存储交给模型
// - Labels-first: labels 全链路透传，记录打分模型、过滤原因等
package treerank

import "github.com/rushteam/treerank/pipeline"

// 轻量 facade：便于用户直接 import "treerank" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFeature = pipeline.KindFeature
	KindFilter  = pipeline.KindFilter
	KindRank    = pipeline.KindRank
	KindReRank  = pipeline.KindReRank
)
