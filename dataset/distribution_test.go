package dataset

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/treerank/core"
)

func TestValueDistribution(t *testing.T) {
	tests := []struct {
		name  string
		codes []int64
		want  []int64
	}{
		{"empty batch still has zero", nil, []int64{0}},
		{"zero inserted", []int64{5, 3, 5}, []int64{0, 3, 5}},
		{"negative codes", []int64{-2, 4, -2, 0}, []int64{-2, 0, 4}},
		{"all zero", []int64{0, 0, 0}, []int64{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValueDistribution(tt.codes)
			assert.Equal(t, tt.want, got)
			assert.True(t, slices.IsSorted(got))
			assert.Contains(t, got, int64(0))
		})
	}
}

func TestValueDistribution_DoesNotMutateInput(t *testing.T) {
	codes := []int64{9, 1, 4}
	ValueDistribution(codes)
	assert.Equal(t, []int64{9, 1, 4}, codes)
}

func TestSelectStorage(t *testing.T) {
	tests := []struct {
		k    int
		want StorageKind
	}{
		{1, StorageNull},
		{2, StorageBit},
		{3, StorageByte},
		{127, StorageByte},
		{128, StorageShort},
		{32767, StorageShort},
	}
	for _, tt := range tests {
		got, err := SelectStorage(tt.k)
		require.NoError(t, err, "k=%d", tt.k)
		assert.Equal(t, tt.want, got, "k=%d", tt.k)
	}

	_, err := SelectStorage(32768)
	require.Error(t, err)
	assert.True(t, core.IsCapacity(err))
}

func TestSelectBins_RoundTrip(t *testing.T) {
	for _, size := range []int{1, 2, 50, 126, 127, 500, 20000} {
		codes := make([]int64, 3*size)
		for d := range codes {
			codes[d] = int64((d*7919)%size) - int64(size/3)
		}
		distribution, bins, err := SelectBins(0, codes)
		require.NoError(t, err)
		require.Equal(t, len(codes), bins.Len())

		for d, code := range codes {
			want, found := slices.BinarySearch(distribution, code)
			require.True(t, found)
			require.Equal(t, want, bins.Get(d), "size=%d doc=%d", size, d)
		}
		decoded := bins.Decode(nil)
		for d := range codes {
			assert.Equal(t, bins.Get(d), decoded[d])
		}
	}
}

func TestSelectBins_StorageByCardinality(t *testing.T) {
	distinct := func(k int) []int64 {
		codes := make([]int64, k)
		for i := range codes {
			codes[i] = int64(i) // 含 0，不同取值恰为 k
		}
		return codes
	}
	tests := []struct {
		k    int
		want StorageKind
	}{
		{1, StorageNull},
		{2, StorageBit},
		{3, StorageByte},
		{127, StorageByte},
		{128, StorageShort},
		{32767, StorageShort},
	}
	for _, tt := range tests {
		_, bins, err := SelectBins(0, distinct(tt.k))
		require.NoError(t, err)
		assert.Equal(t, tt.want, bins.Kind(), "k=%d", tt.k)
	}

	_, _, err := SelectBins(4, distinct(32768))
	require.Error(t, err)
	assert.True(t, core.IsCapacity(err))
	assert.Contains(t, err.Error(), "feature 5")
}

func TestSelectBins_ZeroReservedWhenAbsent(t *testing.T) {
	// 只有一个非零取值：0 仍占一个桶，因此选 bit 而不是 null
	distribution, bins, err := SelectBins(0, []int64{7, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 7}, distribution)
	assert.Equal(t, StorageBit, bins.Kind())
	assert.Equal(t, []int{1, 1, 1}, bins.Decode(nil))
}
