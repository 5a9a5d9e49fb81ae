package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/KyungWonPark/Connectome/internal/cpm"
)

// SQLiteSink records the folds and performance of one run. It implements
// cpm.Sink.
type SQLiteSink struct {
	db    *sql.DB
	runID int64
	log   *zap.Logger
}

// FoldRow is a stored fold. Missing values read back as NaN.
type FoldRow struct {
	Index         int
	Subject       string
	Observed      float64
	Positive      float64
	Negative      float64
	PositiveEdges int
	NegativeEdges int
	Warnings      string
	Error         string
}

// OpenSQLite opens or creates the database at path and starts a run named
// label. A nil logger discards.
func OpenSQLite(ctx context.Context, path, label string, logger *zap.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// In-memory databases live per connection.
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO runs (label, started_at) VALUES (?, ?)`,
		label, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read run id: %w", err)
	}

	logger.Info("result store opened",
		zap.String("path", path),
		zap.String("label", label),
		zap.Int64("run", runID))

	return &SQLiteSink{db: db, runID: runID, log: logger}, nil
}

// RunID returns the id of the run being recorded
func (s *SQLiteSink) RunID() int64 {
	return s.runID
}

// RecordFold implements cpm.Sink
func (s *SQLiteSink) RecordFold(ctx context.Context, f cpm.FoldResult) error {
	var warnings []string
	for _, w := range f.Warnings {
		warnings = append(warnings, w.Error())
	}

	var errText string
	pos, neg := nullable(f.Positive.Value), nullable(f.Negative.Value)
	if f.Err != nil {
		errText = f.Err.Error()
		pos, neg = nil, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO folds (
			run_id, fold_index, subject, observed, positive, negative,
			positive_edges, negative_edges,
			positive_low_confidence, negative_low_confidence,
			warnings, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, f.Index, f.Subject, nullable(f.Observed), pos, neg,
		f.Positive.Edges, f.Negative.Edges,
		f.Positive.LowConfidence, f.Negative.LowConfidence,
		strings.Join(warnings, "; "), errText)
	if err != nil {
		return fmt.Errorf("failed to insert fold %d: %w", f.Index, err)
	}

	s.log.Debug("fold recorded", zap.Int64("run", s.runID), zap.Int("fold", f.Index))
	return nil
}

// RecordPerformance implements cpm.Sink
func (s *SQLiteSink) RecordPerformance(ctx context.Context, sign cpm.Sign, perf cpm.Performance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO performance (run_id, sign, n, r, p, mae, rmse)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.runID, sign.String(), perf.N,
		nullable(perf.R), nullable(perf.P), nullable(perf.MAE), nullable(perf.RMSE))
	if err != nil {
		return fmt.Errorf("failed to insert %s performance: %w", sign, err)
	}

	return nil
}

// Folds returns the folds of this run in fold order.
func (s *SQLiteSink) Folds(ctx context.Context) ([]FoldRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fold_index, subject, observed, positive, negative,
		       positive_edges, negative_edges, warnings, error
		FROM folds WHERE run_id = ? ORDER BY fold_index`, s.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query folds: %w", err)
	}
	defer rows.Close()

	var folds []FoldRow
	for rows.Next() {
		var f FoldRow
		var observed, pos, neg sql.NullFloat64
		if err := rows.Scan(&f.Index, &f.Subject, &observed, &pos, &neg,
			&f.PositiveEdges, &f.NegativeEdges, &f.Warnings, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan fold: %w", err)
		}
		f.Observed, f.Positive, f.Negative = orNaN(observed), orNaN(pos), orNaN(neg)
		folds = append(folds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folds: %w", err)
	}

	return folds, nil
}

// Performance returns the stored evaluation of sign, and false when none was
// recorded.
func (s *SQLiteSink) Performance(ctx context.Context, sign cpm.Sign) (cpm.Performance, bool, error) {
	var perf cpm.Performance
	var r, p, mae, rmse sql.NullFloat64

	err := s.db.QueryRowContext(ctx, `
		SELECT n, r, p, mae, rmse FROM performance WHERE run_id = ? AND sign = ?`,
		s.runID, sign.String()).Scan(&perf.N, &r, &p, &mae, &rmse)
	if err == sql.ErrNoRows {
		return cpm.Performance{}, false, nil
	}
	if err != nil {
		return cpm.Performance{}, false, fmt.Errorf("failed to query %s performance: %w", sign, err)
	}
	perf.R, perf.P, perf.MAE, perf.RMSE = orNaN(r), orNaN(p), orNaN(mae), orNaN(rmse)

	return perf, true, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// SQLite stores NaN as NULL; make that explicit.
func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
