package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/KyungWonPark/Connectome/internal/calc"
	"github.com/KyungWonPark/Connectome/internal/config"
	"github.com/KyungWonPark/Connectome/internal/connectome"
	"github.com/KyungWonPark/Connectome/internal/cpm"
	"github.com/KyungWonPark/Connectome/internal/io"
	"github.com/KyungWonPark/Connectome/internal/record"
)

// loadConnectivity fills a record table with whole-brain edge vectors and,
// when a network is configured, their restriction to it.
func loadConnectivity(study *config.Study, logger *zap.Logger) (*record.Table, error) {
	table := record.NewTable()
	conn := study.Connectivity

	key := func(subject string) record.Key {
		return record.Key{Group: study.Group, Subject: subject, Metric: study.Metric, Network: record.WholeBrain}
	}

	switch conn.Format {
	case config.FormatStack:
		stack, err := io.NpytoMat64(conn.Path)
		if err != nil {
			return nil, err
		}
		subjects, err := io.ReadLines(conn.Subjects)
		if err != nil {
			return nil, err
		}
		if rows, _ := stack.Dims(); rows != len(subjects) {
			return nil, fmt.Errorf("%s has %d rows but %s lists %d subjects", conn.Path, rows, conn.Subjects, len(subjects))
		}
		for i, s := range subjects {
			table.Put(key(s), append([]float64(nil), stack.RawRowView(i)...))
		}

	case config.FormatMatrices, config.FormatTimeSeries:
		files, err := npyFiles(conn.Path)
		if err != nil {
			return nil, err
		}

		var builder *connectome.Builder
		if conn.Format == config.FormatTimeSeries {
			kind, err := connectome.ParseKind(conn.Kind)
			if err != nil {
				return nil, err
			}
			builder = connectome.NewBuilder(calc.Init(study.Workers), kind, conn.Fisher)
		}

		for _, file := range files {
			subject := strings.TrimSuffix(filepath.Base(file), ".npy")
			m, err := io.NpytoMat64(file)
			if err != nil {
				return nil, err
			}

			var vec []float64
			if builder != nil {
				vec, err = builder.BuildEdges(m)
			} else {
				vec, err = connectome.Vectorize(m)
			}
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			table.Put(key(subject), vec)
			logger.Debug("connectivity loaded", zap.String("subject", subject), zap.Int("edges", len(vec)))
		}
	}

	if study.Network == record.WholeBrain {
		return table, nil
	}

	labels, err := io.ReadLines(conn.Labels)
	if err != nil {
		return nil, err
	}
	idx, err := connectome.NetworkEdges(labels, study.Network)
	if err != nil {
		return nil, err
	}
	if err := table.Restrict(study.Group, study.Metric, study.Network, idx); err != nil {
		return nil, err
	}
	logger.Info("edges restricted to network", zap.String("network", study.Network), zap.Int("edges", len(idx)))

	return table, nil
}

func npyFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".npy") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no npy files in %s", dir)
	}
	sort.Strings(files)

	return files, nil
}

// loadDataset joins the behavior table onto the subjects with connectivity.
// Dropped subjects leave both sides before the join.
func loadDataset(study *config.Study, table *record.Table, logger *zap.Logger) (*cpm.Dataset, error) {
	b := study.Behavior

	tbl, err := io.ReadTable(b.Path, b.SubjectColumn)
	if err != nil {
		return nil, err
	}

	if n := tbl.Drop(b.Drop); n > 0 {
		logger.Info("subjects dropped", zap.Strings("subjects", b.Drop), zap.Int("found", n))
	}
	for _, s := range b.Drop {
		table.Delete(study.Group, s)
	}

	inBehavior := make(map[string]bool, tbl.Len())
	for _, s := range tbl.Subjects {
		inBehavior[s] = true
	}

	var subjects []string
	inConn := make(map[string]bool)
	for _, s := range table.Subjects(study.Group, study.Metric, study.Network) {
		inConn[s] = true
		if !inBehavior[s] {
			logger.Warn("subject has connectivity but no behavior", zap.String("subject", s))
			continue
		}
		subjects = append(subjects, s)
	}

	var orphans []string
	for _, s := range tbl.Subjects {
		if !inConn[s] {
			orphans = append(orphans, s)
		}
	}
	if len(orphans) > 0 {
		logger.Warn("subjects have behavior but no connectivity", zap.Strings("subjects", orphans))
		tbl.Drop(orphans)
	}

	score, err := tbl.Float64s(b.Score)
	if err != nil {
		return nil, err
	}

	var names []string
	var cols [][]float64
	for _, c := range b.Confounds {
		col, err := tbl.Float64s(c)
		if err != nil {
			return nil, err
		}
		names = append(names, c)
		cols = append(cols, col)
	}
	for _, c := range b.Categorical {
		values, err := tbl.Strings(c)
		if err != nil {
			return nil, err
		}
		n, encoded := cpm.EncodeCategorical(c, values)
		names = append(names, n...)
		cols = append(cols, encoded...)
	}

	design, err := cpm.NewDesignMatrix(tbl.Subjects, score, names, cols)
	if err != nil {
		return nil, err
	}

	edges, err := table.Stack(study.Group, study.Metric, study.Network, subjects)
	if err != nil {
		return nil, err
	}

	return cpm.NewDataset(subjects, edges, design)
}
