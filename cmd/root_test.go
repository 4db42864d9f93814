package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/aq-dashboard/internal/aggregate"
	"github.com/sells-group/aq-dashboard/internal/config"
	"github.com/sells-group/aq-dashboard/internal/dashboard"
	"github.com/sells-group/aq-dashboard/internal/dataset"
)

const samplePath = "../internal/dataset/testdata/sample.csv"

func testConfig(url string) *config.Config {
	return &config.Config{
		Dataset: config.DatasetConfig{
			URL:              url,
			FetchTimeoutSecs: 5,
			MaxAttempts:      2,
			RetryBackoffMs:   0,
		},
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "ranges", "render", "export", "explore"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "aq-dashboard", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)

	debug := serveCmd.Flags().Lookup("debug")
	require.NotNil(t, debug, "serve command should have --debug flag")
	assert.Equal(t, "false", debug.DefValue)
}

func TestRangesCommand_Flags(t *testing.T) {
	flag := rangesCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "table", flag.DefValue)
}

func TestRenderCommand_Flags(t *testing.T) {
	for _, name := range []string{"pollutant", "location", "out"} {
		assert.NotNil(t, renderCmd.Flags().Lookup(name), "render should have --%s flag", name)
	}
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Equal(t, "air-quality.xlsx", flag.DefValue)
}

func TestLoadDataset(t *testing.T) {
	ds, err := loadDataset(context.Background(), testConfig(samplePath))
	require.NoError(t, err)
	assert.Equal(t, 15, ds.Len())
	assert.Equal(t, 2, ds.Skipped())
}

func TestLoadDataset_InvalidConfig(t *testing.T) {
	_, err := loadDataset(context.Background(), testConfig(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset.url is required")
}

func TestLoadDataset_MissingFile(t *testing.T) {
	_, err := loadDataset(context.Background(), testConfig(filepath.Join(t.TempDir(), "missing.csv")))
	require.Error(t, err)
}

func sampleRanges(t *testing.T) aggregate.Ranges {
	t.Helper()
	ds, err := loadDataset(context.Background(), testConfig(samplePath))
	require.NoError(t, err)
	return aggregate.ComputeRanges(ds)
}

func TestFormatRanges_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatRanges(&buf, sampleRanges(t), "table"))

	out := buf.String()
	assert.Contains(t, out, "POLLUTANT")
	assert.Contains(t, out, "Fine particles (PM 2.5)")
	assert.Contains(t, out, "7.00")
	assert.Contains(t, out, "32.00")
	assert.Contains(t, out, "Ozone (O3)")
}

func TestFormatRanges_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatRanges(&buf, sampleRanges(t), "json"))

	var got aggregate.Ranges
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleRanges(t), got)
}

func TestFormatRanges_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatRanges(&buf, sampleRanges(t), "yaml"))

	var got aggregate.Ranges
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Ozone (O3)", got.MaxPollutant)
	assert.Len(t, got.Pollutants, 3)
	assert.True(t, strings.HasPrefix(buf.String(), "pollutants:"))
}

func TestFormatRanges_UnknownFormat(t *testing.T) {
	assert.False(t, validFormat("csv"))
	assert.Error(t, formatRanges(&bytes.Buffer{}, aggregate.Ranges{}, "csv"))
}

func TestRenderFigures(t *testing.T) {
	ds, err := loadDataset(context.Background(), testConfig(samplePath))
	require.NoError(t, err)
	d := dashboard.New(ds, dashboard.Options{})
	out := filepath.Join(t.TempDir(), "charts")

	paths, err := renderFigures(context.Background(), d, "Ozone (O3)", "Bronx", out)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<svg", p)
	}
	assert.Equal(t, filepath.Join(out, "comparison.svg"), paths[2])
}

func TestRenderFigures_Errors(t *testing.T) {
	ds, err := loadDataset(context.Background(), testConfig(samplePath))
	require.NoError(t, err)
	d := dashboard.New(ds, dashboard.Options{})

	_, err = renderFigures(context.Background(), d, "Lead", "Bronx", t.TempDir())
	assert.ErrorIs(t, err, dashboard.ErrUnknownPollutant)

	_, err = renderFigures(context.Background(), d, "Ozone (O3)", "", t.TempDir())
	assert.ErrorContains(t, err, "no charts for location")
}

func TestFormatSummaries(t *testing.T) {
	var buf bytes.Buffer
	formatSummaries(&buf, []dataset.Summary{
		{Title: "Records by pollutant", Table: [][]string{{"name", "count"}, {"Ozone (O3)", "3"}}},
		{Title: "Places", Table: [][]string{{"distinct_places"}, {"3"}}},
	})

	out := buf.String()
	assert.Contains(t, out, "Records by pollutant\nNAME")
	assert.Contains(t, out, "Ozone (O3)  3")
	assert.Contains(t, out, "\n\nPlaces\n")
}
