package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/treerank/core"
)

func TestTopNNode(t *testing.T) {
	items := []*core.Item{core.NewItem("a"), core.NewItem("b"), core.NewItem("c")}
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"no limit", 0, 3},
		{"truncate", 2, 2},
		{"larger than batch", 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), nil, items)
			require.NoError(t, err)
			assert.Len(t, out, tt.want)
		})
	}
}

func TestTopNNode_PerGroup(t *testing.T) {
	var items []*core.Item
	for _, pair := range [][2]string{{"a1", "a"}, {"a2", "a"}, {"b1", "b"}, {"a3", "a"}, {"b2", "b"}, {"b3", "b"}} {
		it := core.NewItem(pair[0])
		it.Meta["query_id"] = pair[1]
		items = append(items, it)
	}

	out, err := (&TopNNode{N: 2, GroupKey: "query_id"}).Process(context.Background(), nil, items)
	require.NoError(t, err)
	ids := make([]string, len(out))
	for i, it := range out {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, ids)
}
