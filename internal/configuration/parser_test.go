package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleFile = `
writeKey: abc123
dataset: traces
serviceName: test-app
sampleFraction: 0.25
transmission: stdout

transport:
  type: async
  maxBatchSize: 100
  waitPeriod: 10s

tags:
  env: prod

filters:
  spanDenyList:
  - 'health*'
  spanTagAllowList:
    region:
    - 'us-*'

wavefront:
  proxyAddress: wavefront-proxy:30000
  source: span-exporter

stats:
  interval: 30s
`

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte(sampleFile))
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.WriteKey)
	assert.Equal(t, "traces", cfg.Dataset)
	assert.Equal(t, "test-app", cfg.ServiceName)
	assert.Equal(t, 0.25, cfg.SampleFraction)
	assert.Equal(t, "stdout", cfg.Transmission)
	assert.Equal(t, "async", cfg.Transport.Type)
	assert.Equal(t, 100, cfg.Transport.MaxBatchSize)
	assert.Equal(t, 10*time.Second, cfg.Transport.WaitPeriod)
	assert.Equal(t, map[string]string{"env": "prod"}, cfg.Tags)
	assert.Equal(t, []string{"health*"}, cfg.Filters.SpanDenyList)
	assert.Equal(t, []string{"us-*"}, cfg.Filters.SpanTagAllowList["region"])
	assert.True(t, cfg.Wavefront.Enabled())
	assert.Equal(t, "span-exporter", cfg.Wavefront.Source)
	assert.Equal(t, 30*time.Second, cfg.StatsInterval())
	assert.Equal(t, DefaultStatsPrefix, cfg.StatsPrefix())
	assert.NoError(t, cfg.Validate())
}

func TestFromYAMLUnknownField(t *testing.T) {
	_, err := FromYAML([]byte("writekey: abc\n"))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0600))

	cfg, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "traces", cfg.Dataset)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(WriteKeyEnv, "from-env")
	t.Setenv(DatasetEnv, "env-dataset")

	cfg := &Config{Dataset: "configured"}
	cfg.ApplyEnv()
	assert.Equal(t, "from-env", cfg.WriteKey)
	assert.Equal(t, "configured", cfg.Dataset)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{WriteKey: "k"}).Validate())
	assert.NoError(t, (&Config{TestMode: true}).Validate())
	assert.Error(t, (&Config{TestMode: true, SampleFraction: 4}).Validate())
	assert.NoError(t, (&Config{WriteKey: "k", Dataset: "d", SampleFraction: 1}).Validate())
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultStatsInterval, cfg.StatsInterval())
	assert.Equal(t, "fallback", GetStringValue("", "fallback"))
	assert.Equal(t, time.Second, GetDurationValue(0, time.Second))
}
