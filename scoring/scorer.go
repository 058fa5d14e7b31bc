// Package scoring 把一批候选文档的原始特征量化、分桶后交给树模型打分。
//
// Scorer 构造后不可变，可被多个 goroutine 同时用于互不相关的批次；
// 每次 Score 都构建自己的数据集，不共享可变状态。
package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/dataset"
	"github.com/rushteam/treerank/feature"
	"github.com/rushteam/treerank/metrics"
	"github.com/rushteam/treerank/model"
)

// Scorer 打分链路
type Scorer struct {
	ensemble       model.Ensemble
	stats          feature.StatisticsSet
	scoreIsFeature bool
	logger         *zap.Logger
}

// Option 配置 Scorer
type Option func(*Scorer)

// WithScoreAsFeature 把上游已有分数作为第 0 列特征喂给模型
func WithScoreAsFeature(enabled bool) Option {
	return func(s *Scorer) { s.scoreIsFeature = enabled }
}

// WithLogger 设置日志，默认不输出
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer 创建打分器，ensemble 与 stats 在之后只读
func NewScorer(ensemble model.Ensemble, stats feature.StatisticsSet, opts ...Option) (*Scorer, error) {
	if ensemble == nil {
		return nil, core.NewDomainError(core.ModuleScoring, core.ErrorCodeConfig, "ensemble is nil")
	}
	s := &Scorer{
		ensemble: ensemble,
		stats:    stats,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ModelName 模型名，用于打标签与监控
func (s *Scorer) ModelName() string { return s.ensemble.Name() }

// ScoreIsFeature 是否把已有分数作为特征
func (s *Scorer) ScoreIsFeature() bool { return s.scoreIsFeature }

// Statistics 校准参数（只读）
func (s *Scorer) Statistics() feature.StatisticsSet { return s.stats }

// Score 为 n 个文档打分并写入 out。
//
// raw 按特征主序：raw[f][d]。inScores 为上游分数，仅在 ScoreIsFeature 时使用，
// 此时特征数变为 featureCount+1，已有分数占第 0 列，raw 本身不被修改。
// 出错时 out 保持原样。
func (s *Scorer) Score(ctx context.Context, n int, inScores []float64, featureCount int, raw [][]float64, out []float64) (err error) {
	start := time.Now()
	name := s.ensemble.Name()
	defer func() {
		if err != nil {
			metrics.ScoringErrors.WithLabelValues(errorCode(err)).Inc()
			s.logger.Error("scoring failed",
				zap.String("model", name),
				zap.Int("documents", n),
				zap.Int("features", featureCount),
				zap.Error(err))
		}
	}()

	matrix, count := raw, featureCount
	if s.scoreIsFeature {
		if len(inScores) < n {
			return core.Errorf(core.ModuleScoring, core.ErrorCodeInvalidInput,
				"%d existing scores for %d documents", len(inScores), n)
		}
		matrix = withScoreColumn(n, inScores, raw)
		count++
	}

	ds, err := dataset.Build(n, count, matrix, s.stats)
	if err != nil {
		return err
	}
	if ds.N != len(out) {
		return core.Errorf(core.ModuleScoring, core.ErrorCodeConsistency,
			"dataset has %d documents but output holds %d", ds.N, len(out))
	}

	scores, err := s.ensemble.Evaluate(ctx, ds)
	if err != nil {
		return err
	}
	if len(scores) != len(out) {
		return core.Errorf(core.ModuleScoring, core.ErrorCodeConsistency,
			"model %s returned %d scores for %d documents", name, len(scores), len(out))
	}
	copy(out, scores)

	for kind, c := range ds.StorageSummary() {
		metrics.BinStorage.WithLabelValues(kind.String()).Add(float64(c))
	}
	metrics.DocumentsScored.WithLabelValues(name).Add(float64(n))
	metrics.ScoringDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	s.logger.Debug("batch scored",
		zap.String("model", name),
		zap.Int("documents", n),
		zap.Int("features", count),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// withScoreColumn 返回新的外层矩阵：第 0 列为已有分数的副本，其余列引用 raw
func withScoreColumn(n int, inScores []float64, raw [][]float64) [][]float64 {
	matrix := make([][]float64, 0, len(raw)+1)
	matrix = append(matrix, append([]float64(nil), inScores[:n]...))
	return append(matrix, raw...)
}

func errorCode(err error) string {
	if domainErr := core.GetDomainError(err); domainErr != nil {
		return domainErr.Code
	}
	return "UNKNOWN"
}
