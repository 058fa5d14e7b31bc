// Package feast 从 Feast Feature Store 读取在线特征，补全候选文档的原始特征。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast 在线特征的客户端接口。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 获取在线特征，返回的向量与 EntityRows 一一对应
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征引用，例如 ["doc_stats:ctr", "doc_stats:dwell_time"]
	Features []string

	// EntityRows 实体行，例如 [{"doc_id": "d1"}, {"doc_id": "d2"}]
	EntityRows []map[string]any

	// Project 项目名称（可选，默认取客户端配置）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	FeatureVectors []FeatureVector
}

// FeatureVector 单个实体的特征；只保留能转换为数值的特征
type FeatureVector struct {
	Values    map[string]float64
	EntityRow map[string]any
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	// Project 项目名称
	Project string

	// Timeout 单次请求超时，<=0 表示只受调用方 ctx 控制
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig
}

// AuthConfig 认证配置，目前只支持 gRPC 静态 Token（Type = "static"）
type AuthConfig struct {
	Type  string
	Token string
	TLS   bool
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 配置选项：设置认证信息
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}
