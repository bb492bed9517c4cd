package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*RunOptions, error) {
	t.Helper()
	fs := pflag.NewFlagSet("fake-exporter", pflag.ContinueOnError)
	opts := NewRunOptions()
	return opts, opts.Parse(fs, args)
}

func TestInputFlags(t *testing.T) {
	t.Run("when all flags are omitted, returns ErrNoInput", func(t *testing.T) {
		_, err := parse(t)
		assert.ErrorIs(t, err, ErrNoInput)
	})

	t.Run("--version does not need an input", func(t *testing.T) {
		opts, err := parse(t, "--version")
		assert.NoError(t, err)
		assert.True(t, opts.Version)
	})

	t.Run("--demo is a valid input", func(t *testing.T) {
		opts, err := parse(t, "--demo")
		assert.NoError(t, err)
		assert.True(t, opts.Demo)
	})

	t.Run("--input is a valid input", func(t *testing.T) {
		opts, err := parse(t, "--input=-")
		assert.NoError(t, err)
		assert.Equal(t, "-", opts.Input)
	})

	t.Run("when both --demo and --input are set, returns an error", func(t *testing.T) {
		_, err := parse(t, "--demo", "--input=spans.json")
		assert.ErrorIs(t, err, DemoAndInputErr)
	})
}

func TestTransportFlag(t *testing.T) {
	opts, err := parse(t, "--demo")
	require.NoError(t, err)
	assert.Equal(t, SyncTransportType, opts.Transport)

	opts, err = parse(t, "--demo", "--transport=async")
	require.NoError(t, err)
	assert.True(t, opts.Transport.Async())

	_, err = parse(t, "--demo", "--transport=carrier-pigeon")
	assert.Error(t, err)
}

func TestSampleFractionFlag(t *testing.T) {
	_, err := parse(t, "--demo", "--sample-fraction=4")
	assert.Error(t, err)

	opts, err := parse(t, "--demo", "--sample-fraction=0.25")
	require.NoError(t, err)
	assert.Equal(t, 0.25, opts.SampleFraction)
}

func TestConvert(t *testing.T) {
	t.Setenv("HONEYCOMB_WRITEKEY", "")
	t.Setenv("HONEYCOMB_DATASET", "env-dataset")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
writeKey: file-key
serviceName: file-service
sampleFraction: 0.5
tags:
  env: prod
filters:
  spanDenyList:
  - 'health*'
`), 0600))

	opts, err := parse(t, "--demo",
		"--config-file="+path,
		"--service-name=flag-service",
		"--sample-fraction=0.1",
		"--transport=async",
		"--tag=region:us-west-2",
		"--span-deny-list=debug*",
		"--span-tag-allow-list=env:[prod*]")
	require.NoError(t, err)

	cfg, err := opts.Convert()
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.WriteKey)
	assert.Equal(t, "env-dataset", cfg.Dataset)
	assert.Equal(t, "flag-service", cfg.ServiceName)
	assert.Equal(t, 0.1, cfg.SampleFraction)
	assert.Equal(t, "async", cfg.Transport.Type)
	assert.Equal(t, map[string]string{"env": "prod", "region": "us-west-2"}, cfg.Tags)
	assert.Equal(t, []string{"health*", "debug*"}, cfg.Filters.SpanDenyList)
	assert.Equal(t, []string{"prod*"}, cfg.Filters.SpanTagAllowList["env"])
}

func TestConvertKeepsFileValues(t *testing.T) {
	t.Setenv("HONEYCOMB_WRITEKEY", "")
	t.Setenv("HONEYCOMB_DATASET", "")

	opts, err := parse(t, "--demo", "--test-mode")
	require.NoError(t, err)
	cfg, err := opts.Convert()
	require.NoError(t, err)
	assert.True(t, cfg.TestMode)
	assert.Equal(t, float64(0), cfg.SampleFraction)
}

func TestConvertMissingWriteKey(t *testing.T) {
	t.Setenv("HONEYCOMB_WRITEKEY", "")
	t.Setenv("HONEYCOMB_DATASET", "")

	opts, err := parse(t, "--demo", "--dataset=traces")
	require.NoError(t, err)
	_, err = opts.Convert()
	assert.Error(t, err)
}

func TestDecodeTags(t *testing.T) {
	assert.Nil(t, decodeTags(nil))
	assert.Equal(t, map[string]string{"a": "1", "url": "http://x"}, decodeTags([]string{"a:1", "url:http://x", "bad"}))
}
