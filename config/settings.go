// Package config 进程配置（环境变量 / .env）与配置驱动的 Node 注册表。
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/feature"
	"github.com/rushteam/treerank/logging"
	"github.com/rushteam/treerank/pkg/blob"
	"github.com/rushteam/treerank/scoring"
	"github.com/rushteam/treerank/store"
)

// EnvPrefix 环境变量前缀，例如 TREERANK_MODEL_PATH
const EnvPrefix = "TREERANK"

// 模型来源
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceRedis = "redis"
)

// Settings validation errors
var (
	ErrEmptyModelPath     = errors.New("model_path cannot be empty")
	ErrInvalidModelSource = errors.New("model_source must be file, http or redis")
	ErrEmptyRedisAddr     = errors.New("redis_addr cannot be empty when model_source is redis")
	ErrInvalidLogFormat   = errors.New("log_format must be 'json' or 'console'")
	ErrInvalidLogLevel    = errors.New("log_level must be debug, info, warn, or error")
)

// Settings 进程级配置
type Settings struct {
	// ModelPath 模型位置：文件路径、URL 或 Redis key
	ModelPath string `envconfig:"MODEL_PATH" yaml:"model_path"`
	// StatisticsPath 特征统计位置，为空时取 ModelPath + ".features"
	StatisticsPath string `envconfig:"STATISTICS_PATH" yaml:"statistics_path"`
	// ColumnsPath feature_meta.json 位置（可选）
	ColumnsPath    string `envconfig:"COLUMNS_PATH" yaml:"columns_path"`
	ScoreIsFeature bool   `envconfig:"SCORE_IS_FEATURE" default:"false" yaml:"score_is_feature"`

	ModelSource    string        `envconfig:"MODEL_SOURCE" default:"file" yaml:"model_source"`
	ModelKeyPrefix string        `envconfig:"MODEL_KEY_PREFIX" yaml:"model_key_prefix"`
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" yaml:"http_timeout"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379" yaml:"redis_addr"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0" yaml:"redis_db"`

	// RemoteEndpoint 不为空时使用远程评估服务
	RemoteEndpoint string `envconfig:"REMOTE_ENDPOINT" yaml:"remote_endpoint"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" yaml:"log_level"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" yaml:"log_format"`
}

// DefaultSettings 与环境变量默认值一致
func DefaultSettings() Settings {
	return Settings{
		ModelSource: SourceFile,
		HTTPTimeout: 10 * time.Second,
		RedisAddr:   "localhost:6379",
		LogLevel:    "info",
		LogFormat:   "json",
	}
}

// LoadSettings 先加载 .env 文件（不传时尝试当前目录的 .env，不存在则忽略），
// 再按 TREERANK_ 前缀读取环境变量并校验。已存在的环境变量不会被 .env 覆盖。
func LoadSettings(envFiles ...string) (Settings, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Settings{}, fmt.Errorf("load env files: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}

	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Settings{}, fmt.Errorf("process env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate 校验配置
func (s *Settings) Validate() error {
	if s.ModelPath == "" && (s.RemoteEndpoint == "" || s.StatisticsPath == "") {
		return ErrEmptyModelPath
	}
	switch s.ModelSource {
	case SourceFile, SourceHTTP:
	case SourceRedis:
		if s.RedisAddr == "" {
			return ErrEmptyRedisAddr
		}
	default:
		return ErrInvalidModelSource
	}
	if s.LogFormat != "json" && s.LogFormat != "console" {
		return ErrInvalidLogFormat
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil || s.LogLevel == "" {
		return ErrInvalidLogLevel
	}
	return nil
}

// NewLogger 按配置创建日志
func (s *Settings) NewLogger() (*zap.Logger, error) {
	return logging.NewLogger(logging.Config{Format: s.LogFormat, Level: s.LogLevel})
}

// OpenFetcher 按 ModelSource 创建读取器；返回的 close 用于释放 Redis 连接
func (s *Settings) OpenFetcher(ctx context.Context) (blob.Fetcher, func() error, error) {
	noop := func() error { return nil }
	switch s.ModelSource {
	case SourceHTTP:
		return blob.NewHTTPFetcher(s.HTTPTimeout), noop, nil
	case SourceRedis:
		rs, err := store.NewRedisStore(ctx, s.RedisAddr, s.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return &blob.StoreFetcher{Store: rs, KeyPrefix: s.ModelKeyPrefix}, rs.Close, nil
	default:
		return blob.FileFetcher{}, noop, nil
	}
}

// Scorer 加载打分器，ColumnsPath 不为空时一并加载特征列。
// 模型与统计读取完即释放读取器。
func (s *Settings) Scorer(ctx context.Context, logger *zap.Logger) (*scoring.Scorer, *feature.Columns, error) {
	fetcher, closeFetcher, err := s.OpenFetcher(ctx)
	if err != nil {
		return nil, nil, core.WrapError(core.ModuleScoring, core.ErrorCodeConfig, "open model source "+s.ModelSource, err)
	}
	defer func() {
		if cerr := closeFetcher(); cerr != nil && logger != nil {
			logger.Warn("close model source", zap.Error(cerr))
		}
	}()

	scorer, err := scoring.Load(ctx, scoring.Source{
		ModelPath:      s.ModelPath,
		StatisticsPath: s.StatisticsPath,
		ScoreIsFeature: s.ScoreIsFeature,
		Fetcher:        fetcher,
		RemoteEndpoint: s.RemoteEndpoint,
		RemoteTimeout:  s.HTTPTimeout,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, err
	}

	var cols *feature.Columns
	if s.ColumnsPath != "" {
		if cols, err = feature.LoadColumns(ctx, fetcher, s.ColumnsPath); err != nil {
			return nil, nil, err
		}
		if err := CheckColumns(scorer, cols); err != nil {
			return nil, nil, err
		}
	}
	return scorer, cols, nil
}

// CheckColumns 校验特征列数（含分数列）不超过统计信息条数。
func CheckColumns(scorer *scoring.Scorer, cols *feature.Columns) error {
	if want := cols.Len() + boolInt(scorer.ScoreIsFeature()); want > len(scorer.Statistics()) {
		return core.Errorf(core.ModuleScoring, core.ErrorCodeConfig,
			"%d feature columns need %d statistics, have %d", cols.Len(), want, len(scorer.Statistics()))
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
