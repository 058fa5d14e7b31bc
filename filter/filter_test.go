package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/treerank/core"
)

func items(scores ...float64) []*core.Item {
	out := make([]*core.Item, len(scores))
	for i, s := range scores {
		it := core.NewItem(string(rune('a' + i)))
		it.Score = s
		out[i] = it
	}
	return out
}

func TestFilterNode_Expr(t *testing.T) {
	f, err := NewExprFilter(`item.score >= 0.5`)
	require.NoError(t, err)
	node := &FilterNode{Filters: []Filter{f}}

	in := items(0.1, 0.9, 0.5)
	out, err := node.Process(context.Background(), &core.RerankContext{}, in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, "filter.expr", in[0].Labels["filtered"].Source)
}

func TestFilterNode_Blacklist(t *testing.T) {
	node := &FilterNode{Filters: []Filter{NewBlacklistFilter([]string{"a", "c"})}}
	out, err := node.Process(context.Background(), nil, append(items(1, 2, 3), nil))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestFilterNode_ErrorHandling(t *testing.T) {
	f, err := NewExprFilter(`item.meta.lang == "en"`)
	require.NoError(t, err)

	lenient := &FilterNode{Filters: []Filter{f}}
	out, err := lenient.Process(context.Background(), nil, items(1))
	require.NoError(t, err)
	assert.Len(t, out, 1)

	strict := &FilterNode{Filters: []Filter{f}, Strict: true}
	_, err = strict.Process(context.Background(), nil, items(1))
	assert.Error(t, err)
}

func TestNewExprFilter_Invalid(t *testing.T) {
	_, err := NewExprFilter(`item.score >>`)
	assert.Error(t, err)
}
