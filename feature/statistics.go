package feature

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/pkg/blob"
)

// Statistics 是单个特征在训练阶段学到的量化校准参数。
// 加载后只读，被所有打分请求共享。
type Statistics struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Factor     float64 `json:"factor"`       // 缩放系数
	OnLogScale bool    `json:"on_log_scale"` // 是否先做 log(x - min + 1)
}

// StatisticsSet 按特征序号（0 起）索引的校准参数。
type StatisticsSet []Statistics

// ParseStatistics 解析特征统计文件。
//
// 每行一个特征，空白分隔：
//
//	<序号> <min> <max> <factor> <onLogScale>
//
// 序号从 1 开始且必须连续；onLogScale 支持 true/false/1/0。
// 空行与 # 开头的注释行被忽略。
func ParseStatistics(r io.Reader) (StatisticsSet, error) {
	var set StatisticsSet
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, core.Errorf(core.ModuleFeature, core.ErrorCodeConfig,
				"statistics line %d: expected 5 fields, got %d", lineNo, len(fields))
		}
		ordinal, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, core.WrapError(core.ModuleFeature, core.ErrorCodeConfig,
				"statistics line "+strconv.Itoa(lineNo)+": bad ordinal", err)
		}
		if ordinal != len(set)+1 {
			return nil, core.Errorf(core.ModuleFeature, core.ErrorCodeConfig,
				"statistics line %d: expected feature %d, got %d", lineNo, len(set)+1, ordinal)
		}

		var st Statistics
		nums := [3]*float64{&st.Min, &st.Max, &st.Factor}
		for i, p := range nums {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, core.WrapError(core.ModuleFeature, core.ErrorCodeConfig,
					"statistics line "+strconv.Itoa(lineNo)+": bad number", err)
			}
			*p = v
		}
		st.OnLogScale, err = parseFlag(fields[4])
		if err != nil {
			return nil, core.WrapError(core.ModuleFeature, core.ErrorCodeConfig,
				"statistics line "+strconv.Itoa(lineNo)+": bad log-scale flag", err)
		}
		set = append(set, st)
	}
	if err := scanner.Err(); err != nil {
		return nil, core.WrapError(core.ModuleFeature, core.ErrorCodeConfig, "read statistics", err)
	}
	if len(set) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeConfig, "statistics file has no features")
	}
	return set, nil
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// WriteTo 按 ParseStatistics 可读取的格式输出。
func (s StatisticsSet) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for i, st := range s {
		buf.WriteString(strconv.Itoa(i + 1))
		for _, v := range [3]float64{st.Min, st.Max, st.Factor} {
			buf.WriteByte('\t')
			buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		buf.WriteByte('\t')
		buf.WriteString(strconv.FormatBool(st.OnLogScale))
		buf.WriteByte('\n')
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// StatisticsLoader 特征统计加载器接口
// 支持从不同来源加载（本地文件、HTTP 接口、S3 兼容存储、Redis 等）
type StatisticsLoader interface {
	Load(ctx context.Context, source string) (StatisticsSet, error)
}

// FetchStatisticsLoader 通过 blob.Fetcher 读取内容再解析
type FetchStatisticsLoader struct {
	Fetcher blob.Fetcher
}

// NewStatisticsLoader 创建加载器，fetcher 为 nil 时读取本地文件
func NewStatisticsLoader(fetcher blob.Fetcher) *FetchStatisticsLoader {
	if fetcher == nil {
		fetcher = blob.FileFetcher{}
	}
	return &FetchStatisticsLoader{Fetcher: fetcher}
}

func (l *FetchStatisticsLoader) Load(ctx context.Context, source string) (StatisticsSet, error) {
	data, err := l.Fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, core.WrapError(core.ModuleFeature, core.ErrorCodeConfig, "load statistics "+source, err)
	}
	return ParseStatistics(bytes.NewReader(data))
}

// LoadStatisticsFromFile 从本地文件加载特征统计
func LoadStatisticsFromFile(path string) (StatisticsSet, error) {
	return NewStatisticsLoader(nil).Load(context.Background(), path)
}
