package model

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/pkg/blob"
)

// 模型文件格式：
//
//	<Ensemble>
//	  <Tree leaves="3" weight="0.1">
//	    <SplitFeatures>0 2</SplitFeatures>
//	    <LeftChildren>-1 -2</LeftChildren>
//	    <RightChildren>1 -3</RightChildren>
//	    <Thresholds>4 17</Thresholds>
//	    <OriginalThresholds>0.5 3.2</OriginalThresholds>
//	    <LeafOutputs>-0.3 0.1 0.8</LeafOutputs>
//	  </Tree>
//	</Ensemble>
//
// 数组以空白分隔；weight 缺省为 1；Thresholds 与 OriginalThresholds 至少提供一个。
// Tree 的 class/type 属性可省略，只支持 regression（决策树分类器不支持）。
type xmlEnsemble struct {
	XMLName xml.Name  `xml:"Ensemble"`
	Trees   []xmlTree `xml:"Tree"`
}

type xmlTree struct {
	Leaves             string `xml:"leaves,attr"`
	Class              string `xml:"class,attr"`
	Type               string `xml:"type,attr"`
	Weight             string `xml:"weight,attr"`
	SplitFeatures      string `xml:"SplitFeatures"`
	LeftChildren       string `xml:"LeftChildren"`
	RightChildren      string `xml:"RightChildren"`
	Thresholds         string `xml:"Thresholds"`
	OriginalThresholds string `xml:"OriginalThresholds"`
	LeafOutputs        string `xml:"LeafOutputs"`
}

// ParseEnsemble 解析 XML 模型并校验每棵树
func ParseEnsemble(name string, r io.Reader) (*TreeEnsemble, error) {
	var doc xmlEnsemble
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, core.WrapError(core.ModuleModel, core.ErrorCodeConfig, "parse ensemble", err)
	}
	if len(doc.Trees) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeConfig, "ensemble has no trees")
	}

	trees := make([]*RegressionTree, 0, len(doc.Trees))
	for i, xt := range doc.Trees {
		t, err := xt.toTree()
		if err != nil {
			return nil, core.WrapError(core.ModuleModel, core.ErrorCodeConfig, "tree "+strconv.Itoa(i), err)
		}
		trees = append(trees, t)
	}
	return NewTreeEnsemble(name, trees)
}

func (xt *xmlTree) toTree() (*RegressionTree, error) {
	for _, class := range []string{xt.Class, xt.Type} {
		if c := strings.TrimSpace(class); c != "" && !strings.EqualFold(c, "regression") {
			return nil, fmt.Errorf("unsupported tree class %q", c)
		}
	}

	t := &RegressionTree{Weight: 1}
	var err error
	if s := strings.TrimSpace(xt.Weight); s != "" {
		if t.Weight, err = strconv.ParseFloat(s, 64); err != nil {
			return nil, err
		}
	}
	if t.SplitFeatures, err = parseList(xt.SplitFeatures, strconv.Atoi); err != nil {
		return nil, err
	}
	if t.LeftChildren, err = parseList(xt.LeftChildren, strconv.Atoi); err != nil {
		return nil, err
	}
	if t.RightChildren, err = parseList(xt.RightChildren, strconv.Atoi); err != nil {
		return nil, err
	}
	if t.Thresholds, err = parseList(xt.Thresholds, parseInt64); err != nil {
		return nil, err
	}
	if t.OriginalThresholds, err = parseList(xt.OriginalThresholds, parseFloat); err != nil {
		return nil, err
	}
	if t.LeafOutputs, err = parseList(xt.LeafOutputs, parseFloat); err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(xt.Leaves); s != "" {
		leaves, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		if leaves != len(t.LeafOutputs) {
			return nil, core.Errorf(core.ModuleModel, core.ErrorCodeConfig,
				"leaves=%d but %d leaf outputs", leaves, len(t.LeafOutputs))
		}
	}
	return t, nil
}

func parseList[T any](s string, parse func(string) (T, error)) ([]T, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]T, len(fields))
	for i, f := range fields {
		v, err := parse(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInt64(s string) (int64, error)   { return strconv.ParseInt(s, 10, 64) }
func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// EnsembleLoader 模型加载器接口，支持本地文件、HTTP、S3、Redis 等来源
type EnsembleLoader interface {
	Load(ctx context.Context, source string) (*TreeEnsemble, error)
}

// FetchEnsembleLoader 通过 blob.Fetcher 读取内容再解析
type FetchEnsembleLoader struct {
	Fetcher blob.Fetcher
}

// NewEnsembleLoader 创建加载器，fetcher 为 nil 时读取本地文件
func NewEnsembleLoader(fetcher blob.Fetcher) *FetchEnsembleLoader {
	if fetcher == nil {
		fetcher = blob.FileFetcher{}
	}
	return &FetchEnsembleLoader{Fetcher: fetcher}
}

// Load 读取并解析模型，模型名取 source 的文件名部分
func (l *FetchEnsembleLoader) Load(ctx context.Context, source string) (*TreeEnsemble, error) {
	data, err := l.Fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, core.WrapError(core.ModuleModel, core.ErrorCodeConfig, "load ensemble "+source, err)
	}
	return ParseEnsemble(path.Base(source), bytes.NewReader(data))
}

// LoadEnsembleFromFile 从本地文件加载模型
func LoadEnsembleFromFile(filename string) (*TreeEnsemble, error) {
	return NewEnsembleLoader(nil).Load(context.Background(), filename)
}
