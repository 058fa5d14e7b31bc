package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, Label{Value: "forest", Source: "rank"}, Label{Value: "forest", Source: "rank"}},
		{"empty incoming", Label{Value: "forest", Source: "rank"}, Label{}, Label{Value: "forest", Source: "rank"}},
		{"same source", Label{Value: "a", Source: "rank"}, Label{Value: "b", Source: "rank"}, Label{Value: "a|b", Source: "rank"}},
		{"different source", Label{Value: "a", Source: "rank"}, Label{Value: "b", Source: "rerank"}, Label{Value: "a|b", Source: "rank,rerank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeLabel(tt.existing, tt.incoming))
		})
	}
}

func TestFormatAny(t *testing.T) {
	assert.Equal(t, "q1", FormatAny("q1"))
	assert.Equal(t, "42", FormatAny(42))
	assert.Equal(t, "42", FormatAny(int64(42)))
	assert.Equal(t, "1.5", FormatAny(1.5))
	assert.Equal(t, "true", FormatAny(true))
	assert.Equal(t, "0.500000", ScoreLabel(0.5, "rank").Value)
}
