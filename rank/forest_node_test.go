package rank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/feature"
	"github.com/rushteam/treerank/model"
	"github.com/rushteam/treerank/scoring"
)

// priceScorer: price <= 10 得 1，否则得 3（价格越高分越高）
func priceScorer(t *testing.T, opts ...scoring.Option) *scoring.Scorer {
	t.Helper()
	e, err := model.NewTreeEnsemble("price", []*model.RegressionTree{{
		Weight:        1,
		SplitFeatures: []int{0},
		LeftChildren:  []int{^0},
		RightChildren: []int{^1},
		Thresholds:    []int64{10},
		LeafOutputs:   []float64{1, 3},
	}})
	require.NoError(t, err)
	stats := feature.StatisticsSet{{Max: 1000, Factor: 1}, {Max: 1000, Factor: 1}}
	s, err := scoring.NewScorer(e, stats, opts...)
	require.NoError(t, err)
	return s
}

func doc(id, query string, price float64) *core.Item {
	it := core.NewItem(id)
	it.Features["price"] = price
	it.Meta["query_id"] = query
	return it
}

func TestForestNode_SingleGroup(t *testing.T) {
	node := &ForestNode{Scorer: priceScorer(t), Columns: feature.NewColumns("price")}

	out, err := node.Process(context.Background(), &core.RerankContext{}, []*core.Item{
		doc("cheap", "", 5), nil, doc("pricey", "", 50), core.NewItem("no-price"),
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "pricey", out[0].ID)
	assert.Equal(t, 3.0, out[0].Score)
	// 同分保持原顺序
	assert.Equal(t, "cheap", out[1].ID)
	assert.Equal(t, "no-price", out[2].ID)
	assert.Equal(t, "price", out[0].Labels["rank_model"].Value)
	assert.Equal(t, "rank.forest", node.Name())
}

func TestForestNode_Groups(t *testing.T) {
	node := &ForestNode{Scorer: priceScorer(t), Columns: feature.NewColumns("price"), GroupKey: "query_id"}

	out, err := node.Process(context.Background(), nil, []*core.Item{
		doc("q1-a", "q1", 1),
		doc("q2-a", "q2", 1),
		doc("q1-b", "q1", 99),
		doc("q2-b", "q2", 99),
	})
	require.NoError(t, err)
	ids := make([]string, len(out))
	for i, it := range out {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"q1-b", "q1-a", "q2-b", "q2-a"}, ids)
}

func TestForestNode_ScoreAsFeature(t *testing.T) {
	node := &ForestNode{Scorer: priceScorer(t, scoring.WithScoreAsFeature(true)), Columns: feature.NewColumns("price")}

	a, b := doc("a", "", 0), doc("b", "", 0)
	a.Score, b.Score = 20, 2
	out, err := node.Process(context.Background(), nil, []*core.Item{b, a})
	require.NoError(t, err)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, 3.0, out[0].Score)
	assert.Equal(t, 1.0, out[1].Score)
}

func TestForestNode_ErrorKeepsScores(t *testing.T) {
	e, err := model.NewTreeEnsemble("log", nil)
	require.NoError(t, err)
	s, err := scoring.NewScorer(e, feature.StatisticsSet{{Min: 10, Factor: 1, OnLogScale: true}})
	require.NoError(t, err)
	node := &ForestNode{Scorer: s, Columns: feature.NewColumns("price")}

	it := doc("a", "", 0)
	it.Score = 0.42
	_, err = node.Process(context.Background(), nil, []*core.Item{it})
	require.Error(t, err)
	assert.True(t, core.IsCalibration(err))
	assert.Equal(t, 0.42, it.Score)
	assert.NotContains(t, it.Labels, "rank_model")
}

func TestForestNode_Empty(t *testing.T) {
	node := &ForestNode{}
	out, err := node.Process(context.Background(), nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}
