package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/feature"
	"github.com/rushteam/treerank/model"
	"github.com/rushteam/treerank/pkg/blob"
)

// StatisticsSuffix 未指定统计文件时，在模型路径后追加的后缀
const StatisticsSuffix = ".features"

// Source 描述从哪里加载模型和特征统计
type Source struct {
	// ModelPath 模型位置（文件路径或 Store key，取决于 Fetcher）
	ModelPath string
	// StatisticsPath 统计文件位置，为空时取 ModelPath + ".features"
	StatisticsPath string
	// ScoreIsFeature 已有分数是否作为第 0 列特征
	ScoreIsFeature bool
	// Fetcher 读取来源，为空时读本地文件
	Fetcher blob.Fetcher

	// RemoteEndpoint 不为空时使用远程评估服务，此时不加载 ModelPath
	RemoteEndpoint string
	RemoteTimeout  time.Duration

	Logger *zap.Logger
}

// StatisticsPathFor 模型对应的默认统计文件位置
func StatisticsPathFor(modelPath string) string {
	return modelPath + StatisticsSuffix
}

func (src Source) statisticsPath() string {
	if src.StatisticsPath != "" {
		return src.StatisticsPath
	}
	return StatisticsPathFor(src.ModelPath)
}

// Load 并发加载模型与统计信息并构造 Scorer。
// 任何失败都是配置错误，应在启动阶段暴露，而不是等到打分时。
func Load(ctx context.Context, src Source) (*Scorer, error) {
	if src.ModelPath == "" && src.StatisticsPath == "" {
		return nil, core.NewDomainError(core.ModuleScoring, core.ErrorCodeConfig, "model path is empty")
	}
	logger := src.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		ensemble model.Ensemble
		stats    feature.StatisticsSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if src.RemoteEndpoint != "" {
			ensemble = model.NewRPCEnsemble("rpc", src.RemoteEndpoint, src.RemoteTimeout)
			return nil
		}
		trees, err := model.NewEnsembleLoader(src.Fetcher).Load(gctx, src.ModelPath)
		if err != nil {
			return err
		}
		ensemble = trees
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = feature.NewStatisticsLoader(src.Fetcher).Load(gctx, src.statisticsPath())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, core.WrapError(core.ModuleScoring, core.ErrorCodeConfig, "load scorer", err)
	}

	if trees, ok := ensemble.(*model.TreeEnsemble); ok && trees.FeatureCount() > len(stats) {
		return nil, core.Errorf(core.ModuleScoring, core.ErrorCodeConfig,
			"model %s splits on %d features but statistics cover %d", trees.Name(), trees.FeatureCount(), len(stats))
	}

	logger.Info("scorer loaded",
		zap.String("model", ensemble.Name()),
		zap.String("statistics", src.statisticsPath()),
		zap.Int("features", len(stats)),
		zap.Bool("score_is_feature", src.ScoreIsFeature))

	return NewScorer(ensemble, stats, WithScoreAsFeature(src.ScoreIsFeature), WithLogger(logger))
}
