package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrColumn is returned for a column the table does not have.
var ErrColumn = errors.New("no such column")

// Table is a csv file with a header row and one row per subject.
type Table struct {
	Header   []string
	Subjects []string
	// Columns maps a header name to its raw values, in Subjects order.
	Columns map[string][]string
}

// ReadTable loads a csv file keyed by subjectColumn. Subject ids must be
// unique and non-empty.
func ReadTable(path string, subjectColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[ReadTable] failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("[ReadTable] failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("[ReadTable] %s has no header", path)
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	key := -1
	for i, name := range header {
		if name == subjectColumn {
			key = i
			break
		}
	}
	if key < 0 {
		return nil, fmt.Errorf("[ReadTable] %s: subject column %q: %w", path, subjectColumn, ErrColumn)
	}

	t := &Table{
		Header:   header,
		Subjects: make([]string, 0, len(records)-1),
		Columns:  make(map[string][]string, len(header)),
	}

	seen := make(map[string]bool, len(records)-1)
	for n, rec := range records[1:] {
		id := strings.TrimSpace(rec[key])
		if id == "" {
			return nil, fmt.Errorf("[ReadTable] %s line %d: empty subject id", path, n+2)
		}
		if seen[id] {
			return nil, fmt.Errorf("[ReadTable] %s line %d: duplicate subject %q", path, n+2, id)
		}
		seen[id] = true

		t.Subjects = append(t.Subjects, id)
		for i, name := range header {
			t.Columns[name] = append(t.Columns[name], strings.TrimSpace(rec[i]))
		}
	}

	return t, nil
}

// Len returns the number of subjects
func (t *Table) Len() int {
	return len(t.Subjects)
}

// Strings returns a column as text.
func (t *Table) Strings(name string) ([]string, error) {
	col, ok := t.Columns[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrColumn)
	}
	return col, nil
}

// Float64s parses a numeric column.
func (t *Table) Float64s(name string) ([]float64, error) {
	col, err := t.Strings(name)
	if err != nil {
		return nil, err
	}

	vals := make([]float64, len(col))
	for i, s := range col {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q, subject %s: %w", name, t.Subjects[i], err)
		}
		vals[i] = v
	}

	return vals, nil
}

// Drop removes the given subjects and reports how many were present.
func (t *Table) Drop(subjects []string) int {
	drop := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		drop[s] = true
	}

	keep := make([]int, 0, len(t.Subjects))
	for i, s := range t.Subjects {
		if !drop[s] {
			keep = append(keep, i)
		}
	}
	removed := len(t.Subjects) - len(keep)
	if removed == 0 {
		return 0
	}

	subjects2 := make([]string, len(keep))
	for n, i := range keep {
		subjects2[n] = t.Subjects[i]
	}
	t.Subjects = subjects2

	for name, col := range t.Columns {
		kept := make([]string, len(keep))
		for n, i := range keep {
			kept[n] = col[i]
		}
		t.Columns[name] = kept
	}

	return removed
}
