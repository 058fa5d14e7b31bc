package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/dataset"
)

// RPCEnsemble 把量化后的数据集发送到远程评估服务打分。
// 适用于模型由独立服务托管（其它树格式、GPU 评估等）的场景。
//
// 请求格式（JSON）：
//
//	{"n": 3, "features": [{"name": "1", "codes": [0, 1, 1]}, ...]}
//
// 响应格式（JSON）：
//
//	{"scores": [0.85, 0.72, 0.10]}
type RPCEnsemble struct {
	name     string
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

func NewRPCEnsemble(name, endpoint string, timeout time.Duration) *RPCEnsemble {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RPCEnsemble{
		name:     name,
		Endpoint: endpoint,
		Timeout:  timeout,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (m *RPCEnsemble) Name() string { return m.name }

type rpcFeature struct {
	Name  string  `json:"name"`
	Codes []int64 `json:"codes"`
}

type rpcRequest struct {
	N        int          `json:"n"`
	Features []rpcFeature `json:"features"`
}

type rpcResponse struct {
	Scores []float64 `json:"scores"`
}

func (m *RPCEnsemble) Evaluate(ctx context.Context, ds *dataset.Dataset) ([]float64, error) {
	if ds == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "nil dataset")
	}
	if ds.N == 0 {
		return []float64{}, nil
	}
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: m.Timeout}
	}

	reqBody := rpcRequest{N: ds.N, Features: make([]rpcFeature, len(ds.Features))}
	for i, f := range ds.Features {
		reqBody.Features[i] = rpcFeature{Name: f.Name, Codes: f.Codes(nil)}
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ModuleModel, core.ErrorCodeUnavailable, "rpc call "+m.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, core.Errorf(core.ModuleModel, core.ErrorCodeUnavailable,
			"rpc error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Scores) != ds.N {
		return nil, core.Errorf(core.ModuleModel, core.ErrorCodeConsistency,
			"response scores count mismatch: expected %d, got %d", ds.N, len(result.Scores))
	}
	return result.Scores, nil
}

var _ Ensemble = (*RPCEnsemble)(nil)
