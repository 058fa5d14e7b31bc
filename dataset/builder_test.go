package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/feature"
)

func TestBuild_BitScenario(t *testing.T) {
	stats := feature.StatisticsSet{{Min: 0, Factor: 1}}
	ds, err := Build(3, 1, [][]float64{{0.0, 1.0, 1.0}}, stats)
	require.NoError(t, err)

	require.Equal(t, 3, ds.N)
	require.Len(t, ds.Features, 1)
	f := ds.Features[0]
	assert.Equal(t, "1", f.Name)
	assert.Equal(t, []int64{0, 1}, f.UpperBounds)
	assert.Equal(t, StorageBit, f.Bins.Kind())
	assert.Equal(t, []int{0, 1, 1}, f.Bins.Decode(nil))
	assert.Equal(t, []int64{0, 1, 1}, f.Codes(nil))
	assert.Equal(t, []float64{0, 0, 0}, ds.Targets)
	assert.Equal(t, []int{0}, ds.GroupBoundaries)
}

func TestBuild_ConstantAtMinIsNull(t *testing.T) {
	stats := feature.StatisticsSet{{Min: 4.5, Factor: 10}}
	ds, err := Build(2, 1, [][]float64{{4.5, 4.5}}, stats)
	require.NoError(t, err)

	f := ds.Features[0]
	assert.Equal(t, StorageNull, f.Bins.Kind())
	assert.Equal(t, []int{0, 0}, f.Bins.Decode(nil))
	assert.Equal(t, 0, f.Bin(1))
	assert.Equal(t, int64(0), f.Code(0))
}

func TestBuild_MultipleFeatures(t *testing.T) {
	stats := feature.StatisticsSet{
		{Min: 0, Max: 10, Factor: 1},
		{Min: 0, Max: 100, Factor: 10, OnLogScale: true},
		{Min: 1, Max: 1, Factor: 5},
	}
	raw := [][]float64{
		{0, 3, 7, 3},
		{0, 1, 9, 99},
		{1, 1, 1, 1},
	}
	ds, err := Build(4, 3, raw, stats)
	require.NoError(t, err)
	require.Equal(t, 3, ds.FeatureCount())

	assert.Equal(t, []int64{0, 3, 7}, ds.Features[0].UpperBounds)
	assert.Equal(t, StorageByte, ds.Features[0].Bins.Kind())
	assert.Equal(t, []int{0, 1, 2, 1}, ds.Features[0].Bins.Decode(nil))

	// log(1+1)*10=6.93→7, log(9+1)*10=23.03→23, log(99+1)*10=46.05→46
	assert.Equal(t, []int64{0, 7, 23, 46}, ds.Features[1].Codes(nil))
	assert.Equal(t, stats[1], ds.Features[1].Stats)

	assert.Equal(t, StorageNull, ds.Features[2].Bins.Kind())
	assert.Equal(t, "3", ds.Features[2].Name)
	assert.Same(t, ds.Features[1], ds.Feature("2"))
	assert.Nil(t, ds.Feature("9"))

	assert.Equal(t, map[StorageKind]int{StorageByte: 2, StorageNull: 1}, ds.StorageSummary())
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	raw := [][]float64{{0.5, 2.5}}
	_, err := Build(2, 1, raw, feature.StatisticsSet{{Factor: 2}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, 2.5}}, raw)
}

func TestBuild_Errors(t *testing.T) {
	linear := feature.StatisticsSet{{Factor: 1}}
	tests := []struct {
		name  string
		n     int
		count int
		raw   [][]float64
		stats feature.StatisticsSet
		check func(error) bool
	}{
		{"missing column", 1, 2, [][]float64{{1}}, feature.StatisticsSet{{}, {}}, core.IsInvalidInput},
		{"short column", 3, 1, [][]float64{{1, 2}}, linear, core.IsInvalidInput},
		{"missing statistics", 1, 1, [][]float64{{1}}, nil, core.IsInvalidInput},
		{"log domain", 1, 1, [][]float64{{-5}}, feature.StatisticsSet{{Factor: 1, OnLogScale: true}}, core.IsCalibration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Build(tt.n, tt.count, tt.raw, tt.stats)
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestBuild_CapacityError(t *testing.T) {
	n := MaxShortValues + 1
	col := make([]float64, n)
	for d := range col {
		col[d] = float64(d + 1) // 加上保留的 0，共 32768 个取值
	}
	_, err := Build(n, 2, [][]float64{make([]float64, n), col}, feature.StatisticsSet{{Factor: 1}, {Factor: 1}})
	require.Error(t, err)
	assert.True(t, core.IsCapacity(err))
	assert.Contains(t, err.Error(), "feature 2")
}

func TestBuild_Empty(t *testing.T) {
	ds, err := Build(0, 1, [][]float64{{}}, feature.StatisticsSet{{Factor: 1}})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.N)
	assert.Equal(t, StorageNull, ds.Features[0].Bins.Kind())
}

func TestTranspose(t *testing.T) {
	in := [][]float64{{1, 2, 3}, {4, 5, 6}}
	out := Transpose(in)
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, out)

	out[0][0] = 99
	assert.Equal(t, 1.0, in[0][0])
	assert.Nil(t, Transpose(nil))
}
