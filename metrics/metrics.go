// Package metrics 打分链路的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScoringDuration 单次打分（量化 + 评估）耗时
	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treerank_scoring_duration_seconds",
			Help:    "Time spent scoring one batch of documents",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"model"},
	)

	// DocumentsScored 已打分的文档数
	DocumentsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerank_documents_scored_total",
			Help: "Total number of documents scored",
		},
		[]string{"model"},
	)

	// BinStorage 各分桶存储形态被选中的次数（每批次每特征一次）
	BinStorage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerank_bin_storage_total",
			Help: "Number of feature columns built per bin storage kind",
		},
		[]string{"kind"},
	)

	// FeatureMissing 组装特征矩阵时缺失的特征（按 0 填充）
	FeatureMissing = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerank_feature_missing_total",
			Help: "Number of documents missing a model feature column",
		},
		[]string{"feature"},
	)

	// ScoringErrors 打分失败次数，按错误代码区分
	ScoringErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerank_scoring_errors_total",
			Help: "Total number of failed scoring calls by error code",
		},
		[]string{"code"},
	)
)
