package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "none", cfg.Impute)
	assert.Equal(t, "kmeans", cfg.Clustering.Method)
	assert.Equal(t, 3, cfg.Clustering.NClusters)
	assert.Equal(t, 100, cfg.Clustering.MaxIterations)
	assert.Equal(t, 0.001, cfg.Clustering.Tolerance)
	assert.Equal(t, 0.5, cfg.Clustering.Eps)
	assert.Equal(t, 3, cfg.Clustering.MinPts)
	assert.Equal(t, 100, cfg.Forest.NTrees)
	assert.Equal(t, 10, cfg.Forest.MaxDepth)
	assert.Equal(t, "classification", cfg.Forest.Task)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyze.yaml")
	body := `
output: yaml
seed: 42
clustering:
  method: dbscan
  eps: 1.5
forest:
  ntrees: 25
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("ANALYZE_FOREST_MAXDEPTH", "4")
	t.Setenv("ANALYZE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "dbscan", cfg.Clustering.Method)
	assert.Equal(t, 1.5, cfg.Clustering.Eps)
	assert.Equal(t, 25, cfg.Forest.NTrees)
	assert.Equal(t, 4, cfg.Forest.MaxDepth)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("ANALYZE_OUTPUT", "xml")
	_, err = Load("")
	assert.ErrorContains(t, err, "output")
}

func TestValidate(t *testing.T) {
	cfg := Config{Output: "json"}
	assert.NoError(t, cfg.Validate())

	cfg.Forest.TestRatio = 1
	assert.Error(t, cfg.Validate())

	cfg.Forest.TestRatio = 0.2
	cfg.Forest.Folds = 1
	assert.Error(t, cfg.Validate())
}
