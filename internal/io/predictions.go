package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/KyungWonPark/Connectome/internal/cpm"
)

var predictionHeader = []string{
	"subject", "observed",
	"positive", "positive_edges", "positive_low_confidence",
	"negative", "negative_edges", "negative_low_confidence",
	"error",
}

// WritePredictions saves one row per fold. Failed folds keep their row with
// empty predictions and the failure in the error column.
func WritePredictions(path string, res *cpm.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[WritePredictions] failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(predictionHeader); err != nil {
		return fmt.Errorf("[WritePredictions] failed to write %s: %w", path, err)
	}

	for _, fold := range res.Folds {
		row := []string{fold.Subject, formatFloat(fold.Observed)}
		if fold.Err != nil {
			row = append(row, "", "", "", "", "", "", fold.Err.Error())
		} else {
			for _, s := range []cpm.Sign{cpm.Positive, cpm.Negative} {
				p := fold.Of(s)
				row = append(row,
					formatFloat(p.Value),
					strconv.Itoa(p.Edges),
					strconv.FormatBool(p.LowConfidence))
			}
			row = append(row, "")
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("[WritePredictions] failed to write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("[WritePredictions] failed to write %s: %w", path, err)
	}

	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
