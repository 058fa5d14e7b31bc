// Package blob 读取模型文件、特征统计文件等二进制内容。
// 支持本地文件、HTTP 接口、S3 兼容存储、core.Store（如 Redis）等来源，
// 上层 Loader 只负责解析，来源通过 Fetcher 注入。
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rushteam/treerank/core"
)

// Fetcher 按位置读取完整内容。location 的含义由实现决定（文件路径、URL、对象 key 等）。
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FetcherFunc 让普通函数实现 Fetcher。
type FetcherFunc func(ctx context.Context, location string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// FileFetcher 本地文件
type FileFetcher struct{}

func (FileFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return data, nil
}

// HTTPFetcher 通过 GET 请求读取
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher 创建 HTTP Fetcher，timeout 为 0 时默认 10s
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("http get %s: status=%d, body=%s", url, resp.StatusCode, string(body))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// S3Client S3 兼容协议客户端接口（不直接依赖具体 SDK，支持依赖注入）
// 支持 AWS S3、阿里云 OSS、腾讯云 COS、MinIO 等
type S3Client interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// S3Fetcher 从指定 bucket 读取对象
type S3Fetcher struct {
	Client S3Client
	Bucket string
}

func (f *S3Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	if f.Client == nil {
		return nil, fmt.Errorf("s3 client not set")
	}
	reader, err := f.Client.GetObject(ctx, f.Bucket, key)
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", f.Bucket, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", f.Bucket, key, err)
	}
	return data, nil
}

// StoreFetcher 从 core.Store 读取，location 即 key（可加统一前缀）
type StoreFetcher struct {
	Store     core.Store
	KeyPrefix string
}

func (f *StoreFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	if f.Store == nil {
		return nil, fmt.Errorf("store not set")
	}
	data, err := f.Store.Get(ctx, f.KeyPrefix+key)
	if err != nil {
		return nil, fmt.Errorf("%s get %s: %w", f.Store.Name(), f.KeyPrefix+key, err)
	}
	return data, nil
}
