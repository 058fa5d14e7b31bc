package model

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/dataset"
	"github.com/rushteam/treerank/feature"
)

const testModel = `<Ensemble>
  <Tree leaves="3" weight="1">
    <SplitFeatures>0 1</SplitFeatures>
    <LeftChildren>-1 -2</LeftChildren>
    <RightChildren>1 -3</RightChildren>
    <Thresholds>1 5</Thresholds>
    <LeafOutputs>-1 0.5 2</LeafOutputs>
  </Tree>
  <Tree leaves="1" weight="0.5">
    <LeafOutputs>4</LeafOutputs>
  </Tree>
  <Tree>
    <SplitFeatures>0</SplitFeatures>
    <LeftChildren>-1</LeftChildren>
    <RightChildren>-2</RightChildren>
    <OriginalThresholds>2.0</OriginalThresholds>
    <LeafOutputs>0 10</LeafOutputs>
  </Tree>
</Ensemble>`

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	stats := feature.StatisticsSet{{Factor: 1}, {Factor: 1}}
	ds, err := dataset.Build(3, 2, [][]float64{{0, 2, 3}, {9, 4, 6}}, stats)
	require.NoError(t, err)
	return ds
}

func TestTreeEnsemble_Evaluate(t *testing.T) {
	e, err := ParseEnsemble("test", strings.NewReader(testModel))
	require.NoError(t, err)
	assert.Equal(t, "test", e.Name())
	assert.Len(t, e.Trees, 3)
	assert.Equal(t, 2, e.FeatureCount())

	scores, err := e.Evaluate(context.Background(), testDataset(t))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2.5, 14}, scores, 1e-9)
}

func TestTreeEnsemble_ConcurrentEvaluate(t *testing.T) {
	e, err := ParseEnsemble("test", strings.NewReader(testModel))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scores, err := e.Evaluate(context.Background(), testDataset(t))
			assert.NoError(t, err)
			assert.InDeltaSlice(t, []float64{1, 2.5, 14}, scores, 1e-9)
		}()
	}
	wg.Wait()
}

func TestTreeEnsemble_DatasetTooNarrow(t *testing.T) {
	e, err := ParseEnsemble("test", strings.NewReader(testModel))
	require.NoError(t, err)

	ds, err := dataset.Build(1, 1, [][]float64{{1}}, feature.StatisticsSet{{Factor: 1}})
	require.NoError(t, err)
	_, err = e.Evaluate(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
}

func TestTreeEnsemble_OriginalThresholdBelowLogDomain(t *testing.T) {
	tree := &RegressionTree{
		Weight:             1,
		SplitFeatures:      []int{0},
		LeftChildren:       []int{-1},
		RightChildren:      []int{-2},
		OriginalThresholds: []float64{-10},
		LeafOutputs:        []float64{1, 2},
	}
	e, err := NewTreeEnsemble("", []*RegressionTree{tree})
	require.NoError(t, err)
	assert.Equal(t, "regression_trees", e.Name())

	ds, err := dataset.Build(2, 1, [][]float64{{0, 5}}, feature.StatisticsSet{{Factor: 1, OnLogScale: true}})
	require.NoError(t, err)
	scores, err := e.Evaluate(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, scores)
}

func TestParseEnsemble_Errors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"wrong root", `<Forest></Forest>`},
		{"no trees", `<Ensemble></Ensemble>`},
		{"leaf count", `<Ensemble><Tree leaves="2"><LeafOutputs>1</LeafOutputs></Tree></Ensemble>`},
		{"bad number", `<Ensemble><Tree><LeafOutputs>x</LeafOutputs></Tree></Ensemble>`},
		{"missing thresholds", `<Ensemble><Tree><SplitFeatures>0</SplitFeatures><LeftChildren>-1</LeftChildren>
			<RightChildren>-2</RightChildren><LeafOutputs>1 2</LeafOutputs></Tree></Ensemble>`},
		{"backward child", `<Ensemble><Tree><SplitFeatures>0 0</SplitFeatures><LeftChildren>-1 0</LeftChildren>
			<RightChildren>1 -3</RightChildren><Thresholds>1 2</Thresholds><LeafOutputs>1 2 3</LeafOutputs></Tree></Ensemble>`},
		{"missing leaf", `<Ensemble><Tree><SplitFeatures>0</SplitFeatures><LeftChildren>-1</LeftChildren>
			<RightChildren>-5</RightChildren><Thresholds>1</Thresholds><LeafOutputs>1 2</LeafOutputs></Tree></Ensemble>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnsemble("bad", strings.NewReader(tt.xml))
			require.Error(t, err)
			assert.True(t, core.IsConfig(err), "got %v", err)
		})
	}
}

func TestParseEnsemble_TreeClass(t *testing.T) {
	_, err := ParseEnsemble("dt", strings.NewReader(`<Ensemble><Tree class="decision"><LeafOutputs>1</LeafOutputs></Tree></Ensemble>`))
	require.Error(t, err)
	assert.True(t, core.IsConfig(err))
	assert.Contains(t, err.Error(), `unsupported tree class "decision"`)

	e, err := ParseEnsemble("rt", strings.NewReader(`<Ensemble><Tree type="Regression"><LeafOutputs>1</LeafOutputs></Tree></Ensemble>`))
	require.NoError(t, err)
	assert.Equal(t, "rt", e.Name())
}

func TestLoadEnsembleFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest.xml")
	require.NoError(t, os.WriteFile(path, []byte(testModel), 0o644))

	e, err := LoadEnsembleFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "forest.xml", e.Name())

	_, err = LoadEnsembleFromFile(path + ".missing")
	require.Error(t, err)
	assert.True(t, core.IsConfig(err))
}
