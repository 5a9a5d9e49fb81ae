// Package record keeps per-subject connectivity vectors under an explicit
// {group, subject, metric, network} key.
package record

import (
	"errors"
	"fmt"

	"github.com/KyungWonPark/Connectome/internal/connectome"
	"github.com/gonum/matrix/mat64"
)

// WholeBrain is the network name of unrestricted edge vectors.
const WholeBrain = ""

var (
	// ErrNotFound is returned when a key holds no vector.
	ErrNotFound = errors.New("record: no such record")
	// ErrRagged is returned when stacked vectors differ in length.
	ErrRagged = errors.New("record: edge vectors differ in length")
)

// Key identifies one edge vector.
type Key struct {
	Group   string
	Subject string
	Metric  string
	Network string
}

func (k Key) String() string {
	network := k.Network
	if network == WholeBrain {
		network = "whole-brain"
	}

	return fmt.Sprintf("%s/%s/%s/%s", k.Group, k.Subject, k.Metric, network)
}

// Table maps keys to edge vectors. Subjects keep their insertion order. It is
// not safe for concurrent writes.
type Table struct {
	values map[Key][]float64
	order  []Key
}

// NewTable returns an empty Table
func NewTable() *Table {
	return &Table{values: make(map[Key][]float64)}
}

// Put stores vec under k, replacing any previous value.
func (t *Table) Put(k Key, vec []float64) {
	if _, ok := t.values[k]; !ok {
		t.order = append(t.order, k)
	}
	t.values[k] = vec
}

// Get returns the vector stored under k.
func (t *Table) Get(k Key) ([]float64, error) {
	vec, ok := t.values[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
	}

	return vec, nil
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.order)
}

// Delete drops every record of subject in group.
func (t *Table) Delete(group, subject string) {
	kept := t.order[:0]
	for _, k := range t.order {
		if k.Group == group && k.Subject == subject {
			delete(t.values, k)
			continue
		}
		kept = append(kept, k)
	}
	t.order = kept
}

// Subjects returns, in insertion order, the subjects holding a record for
// group, metric and network.
func (t *Table) Subjects(group, metric, network string) []string {
	var subjects []string
	for _, k := range t.order {
		if k.Group == group && k.Metric == metric && k.Network == network {
			subjects = append(subjects, k.Subject)
		}
	}

	return subjects
}

// Stack returns the subjects by edges matrix of the given subjects, rows in
// the order of subjects.
func (t *Table) Stack(group, metric, network string, subjects []string) (*mat64.Dense, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: no subjects for %s/%s", ErrNotFound, group, metric)
	}

	rows := make([][]float64, len(subjects))
	for i, s := range subjects {
		vec, err := t.Get(Key{Group: group, Subject: s, Metric: metric, Network: network})
		if err != nil {
			return nil, err
		}
		if i > 0 && len(vec) != len(rows[0]) {
			return nil, fmt.Errorf("%w: %s has %d edges, %s has %d", ErrRagged, subjects[0], len(rows[0]), s, len(vec))
		}
		rows[i] = vec
	}
	if len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %s/%s/%s has no edges", ErrNotFound, group, metric, network)
	}

	stack := mat64.NewDense(len(subjects), len(rows[0]), nil)
	for i, vec := range rows {
		stack.SetRow(i, vec)
	}

	return stack, nil
}

// Restrict stores, for every whole-brain record of group and metric, the
// edges at idx under network.
func (t *Table) Restrict(group, metric, network string, idx []int) error {
	for _, s := range t.Subjects(group, metric, WholeBrain) {
		vec, err := t.Get(Key{Group: group, Subject: s, Metric: metric})
		if err != nil {
			return err
		}

		sub, err := connectome.Subset(vec, idx)
		if err != nil {
			return fmt.Errorf("record: restricting %s to %s: %w", s, network, err)
		}
		t.Put(Key{Group: group, Subject: s, Metric: metric, Network: network}, sub)
	}

	return nil
}
