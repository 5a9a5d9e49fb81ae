package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyungWonPark/Connectome/internal/cpm"
)

const fullStudy = `
group: patients
metric: tangent
network: DMN
connectivity:
  format: stack
  path: conn.npy
  subjects: subjects.txt
  labels: /atlas/labels.txt
behavior:
  path: behavior.csv
  subject_column: id
  score: language_score
  confounds: [lesion_normalized]
  categorical: [sex]
  drop: [sub40_np130304]
selection:
  method: partial_correlation
  threshold: 0.05
strict: true
workers: 3
fold_timeout: 90s
output:
  predictions: predictions.csv
  sqlite: results.db
log:
  level: debug
  development: true
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(fullStudy))
	require.NoError(t, err)

	assert.Equal(t, "patients", s.Group)
	assert.Equal(t, "DMN", s.Network)
	assert.Equal(t, "id", s.Behavior.SubjectColumn)
	assert.Equal(t, []string{"lesion_normalized"}, s.Behavior.Confounds)
	assert.Equal(t, []string{"sex"}, s.Behavior.Categorical)
	assert.Equal(t, []string{"sub40_np130304"}, s.Behavior.Drop)
	assert.Equal(t, 0.05, s.Selection.Threshold)
	assert.True(t, s.Strict)
	assert.Equal(t, 3, s.Workers)
	assert.Equal(t, 90*time.Second, s.FoldTimeout)
	assert.Equal(t, "debug", s.Log.Level)

	cfg, err := s.DriverConfig()
	require.NoError(t, err)
	assert.Equal(t, cpm.MethodPartialCorrelation, cfg.Method)
	assert.Equal(t, 0.05, cfg.Threshold)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 3, cfg.Workers)
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse([]byte(`
connectivity:
  path: conn.npy
  subjects: subjects.txt
behavior:
  path: behavior.csv
  score: score
`))
	require.NoError(t, err)

	assert.Equal(t, FormatStack, s.Connectivity.Format)
	assert.Equal(t, "correlation", s.Connectivity.Kind)
	assert.Equal(t, "subject", s.Behavior.SubjectColumn)
	assert.Equal(t, "linear_model", s.Selection.Method)
	assert.Equal(t, cpm.DefaultThreshold, s.Selection.Threshold)
	assert.Equal(t, runtime.NumCPU(), s.Workers)
	assert.Equal(t, "info", s.Log.Level)
}

func TestParseInvalid(t *testing.T) {
	base := "connectivity: {path: c.npy, subjects: s.txt}\nbehavior: {path: b.csv, score: score}\n"

	for name, doc := range map[string]string{
		"threshold":   base + "selection: {threshold: 1.5}\n",
		"method":      base + "selection: {method: spearman}\n",
		"format":      "connectivity: {format: nifti, path: c}\nbehavior: {path: b.csv, score: score}\n",
		"kind":        "connectivity: {format: timeseries, kind: coherence, path: ts}\nbehavior: {path: b.csv, score: score}\n",
		"no subjects": "connectivity: {path: c.npy}\nbehavior: {path: b.csv, score: score}\n",
		"no score":    "connectivity: {path: c.npy, subjects: s.txt}\nbehavior: {path: b.csv}\n",
		"no labels":   base + "network: DMN\n",
		"timeout":     base + "fold_timeout: -1s\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), err.Error())
		})
	}

	_, err := Parse([]byte(base + "thresold: 0.1\n"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	s, err := Parse([]byte(fullStudy))
	require.NoError(t, err)

	s.Resolve("/data", "/results")
	assert.Equal(t, "/data/conn.npy", s.Connectivity.Path)
	assert.Equal(t, "/data/subjects.txt", s.Connectivity.Subjects)
	assert.Equal(t, "/atlas/labels.txt", s.Connectivity.Labels)
	assert.Equal(t, "/data/behavior.csv", s.Behavior.Path)
	assert.Equal(t, "/results/predictions.csv", s.Output.Predictions)
	assert.Equal(t, "/results/results.db", s.Output.SQLite)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullStudy), 0o644))

	t.Setenv("DATA", "/mnt/data")
	t.Setenv("RESULT", "")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/data/behavior.csv", s.Behavior.Path)
	assert.Equal(t, "predictions.csv", s.Output.Predictions)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
