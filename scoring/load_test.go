package scoring

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/treerank/core"
	"github.com/rushteam/treerank/pkg/blob"
	"github.com/rushteam/treerank/store"
)

const stumpModel = `<Ensemble>
  <Tree leaves="2" weight="2">
    <SplitFeatures>0</SplitFeatures>
    <LeftChildren>-1</LeftChildren>
    <RightChildren>-2</RightChildren>
    <Thresholds>3</Thresholds>
    <LeafOutputs>0.25 1</LeafOutputs>
  </Tree>
</Ensemble>`

const stumpStats = `# ordinal min max factor log
1 0 10 1 false
`

func writeModel(t *testing.T, dir string, stats string) string {
	t.Helper()
	modelPath := filepath.Join(dir, "ranker.xml")
	require.NoError(t, os.WriteFile(modelPath, []byte(stumpModel), 0o644))
	if stats != "" {
		require.NoError(t, os.WriteFile(StatisticsPathFor(modelPath), []byte(stats), 0o644))
	}
	return modelPath
}

func TestLoad_DefaultStatisticsPath(t *testing.T) {
	modelPath := writeModel(t, t.TempDir(), stumpStats)

	s, err := Load(context.Background(), Source{ModelPath: modelPath})
	require.NoError(t, err)
	assert.Equal(t, "ranker.xml", s.ModelName())
	assert.Len(t, s.Statistics(), 1)
	assert.False(t, s.ScoreIsFeature())

	out := make([]float64, 3)
	require.NoError(t, s.Score(context.Background(), 3, nil, 1, [][]float64{{1, 4, 9}}, out))
	assert.Equal(t, []float64{0.5, 2, 2}, out)
}

func TestLoad_ExplicitStatisticsPath(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeModel(t, dir, "")
	statsPath := filepath.Join(dir, "custom.stats")
	require.NoError(t, os.WriteFile(statsPath, []byte("1 0 10 1 false\n2 0 10 1 1\n"), 0o644))

	s, err := Load(context.Background(), Source{ModelPath: modelPath, StatisticsPath: statsPath, ScoreIsFeature: true})
	require.NoError(t, err)
	assert.Len(t, s.Statistics(), 2)
	assert.True(t, s.ScoreIsFeature())
}

func TestLoad_ConfigErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing statistics", func(t *testing.T) {
		modelPath := writeModel(t, dir, "")
		_, err := Load(context.Background(), Source{ModelPath: modelPath})
		assert.True(t, core.IsConfig(err))
	})
	t.Run("missing model", func(t *testing.T) {
		_, err := Load(context.Background(), Source{ModelPath: filepath.Join(dir, "none.xml")})
		assert.True(t, core.IsConfig(err))
	})
	t.Run("empty source", func(t *testing.T) {
		_, err := Load(context.Background(), Source{})
		assert.True(t, core.IsConfig(err))
	})
	t.Run("statistics narrower than model", func(t *testing.T) {
		modelPath := filepath.Join(dir, "wide.xml")
		require.NoError(t, os.WriteFile(modelPath, []byte(`<Ensemble><Tree>
<SplitFeatures>2</SplitFeatures><LeftChildren>-1</LeftChildren><RightChildren>-2</RightChildren>
<Thresholds>0</Thresholds><LeafOutputs>0 1</LeafOutputs></Tree></Ensemble>`), 0o644))
		require.NoError(t, os.WriteFile(StatisticsPathFor(modelPath), []byte(stumpStats), 0o644))
		_, err := Load(context.Background(), Source{ModelPath: modelPath})
		assert.True(t, core.IsConfig(err))
	})
}

func TestLoad_FromStore(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	require.NoError(t, ms.Set(ctx, "models/ranker.xml", []byte(stumpModel)))
	require.NoError(t, ms.Set(ctx, "models/ranker.xml.features", []byte(stumpStats)))

	s, err := Load(ctx, Source{
		ModelPath: "ranker.xml",
		Fetcher:   &blob.StoreFetcher{Store: ms, KeyPrefix: "models/"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ranker.xml", s.ModelName())
}

func TestLoad_Remote(t *testing.T) {
	modelPath := writeModel(t, t.TempDir(), stumpStats)
	s, err := Load(context.Background(), Source{
		StatisticsPath: StatisticsPathFor(modelPath),
		RemoteEndpoint: "http://127.0.0.1:1/score",
	})
	require.NoError(t, err)
	assert.Equal(t, "rpc", s.ModelName())
}
