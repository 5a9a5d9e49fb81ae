// Package config loads the YAML description of one predictive modeling
// study.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KyungWonPark/Connectome/internal/connectome"
	"github.com/KyungWonPark/Connectome/internal/cpm"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid study config")

// Connectivity source formats
const (
	FormatStack      = "stack"
	FormatMatrices   = "matrices"
	FormatTimeSeries = "timeseries"
)

// Study is loaded once and passed down.
type Study struct {
	Group   string `yaml:"group"`
	Metric  string `yaml:"metric"`
	Network string `yaml:"network"`

	Connectivity Connectivity `yaml:"connectivity"`
	Behavior     Behavior     `yaml:"behavior"`
	Selection    Selection    `yaml:"selection"`

	Strict      bool          `yaml:"strict"`
	Workers     int           `yaml:"workers"`
	FoldTimeout time.Duration `yaml:"fold_timeout"`

	Output Output `yaml:"output"`
	Log    Log    `yaml:"log"`
}

// Connectivity locates the subject edge data.
type Connectivity struct {
	// Format is stack (one subjects by edges npy), matrices (a directory of
	// <subject>.npy connectivity matrices) or timeseries (a directory of
	// <subject>.npy regions by timepoints series).
	Format   string `yaml:"format"`
	Path     string `yaml:"path"`
	Subjects string `yaml:"subjects"`
	Kind     string `yaml:"kind"`
	Fisher   bool   `yaml:"fisher"`
	Labels   string `yaml:"labels"`
}

// Behavior locates the behavioral table and names its columns.
type Behavior struct {
	Path          string   `yaml:"path"`
	SubjectColumn string   `yaml:"subject_column"`
	Score         string   `yaml:"score"`
	Confounds     []string `yaml:"confounds"`
	Categorical   []string `yaml:"categorical"`
	Drop          []string `yaml:"drop"`
}

type Selection struct {
	Method    string  `yaml:"method"`
	Threshold float64 `yaml:"threshold"`
}

type Output struct {
	Predictions string `yaml:"predictions"`
	SQLite      string `yaml:"sqlite"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads, defaults, resolves and validates a study file. Relative input
// paths resolve against $DATA and output paths against $RESULT.
func Load(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read study config %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Resolve(os.Getenv("DATA"), os.Getenv("RESULT"))

	return s, nil
}

// Parse decodes and validates a study document. Unknown keys are rejected.
func Parse(data []byte) (*Study, error) {
	var s Study

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse study config: %w", err)
	}

	s.defaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Study) defaults() {
	if s.Connectivity.Format == "" {
		s.Connectivity.Format = FormatStack
	}
	if s.Connectivity.Kind == "" {
		s.Connectivity.Kind = string(connectome.Correlation)
	}
	if s.Behavior.SubjectColumn == "" {
		s.Behavior.SubjectColumn = "subject"
	}
	if s.Selection.Method == "" {
		s.Selection.Method = string(cpm.MethodLinearModel)
	}
	if s.Selection.Threshold == 0 {
		s.Selection.Threshold = cpm.DefaultThreshold
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
}

// Validate reports the first problem found, wrapping ErrInvalid.
func (s *Study) Validate() error {
	if !(s.Selection.Threshold > 0 && s.Selection.Threshold < 1) {
		return fmt.Errorf("%w: selection threshold %g outside (0, 1)", ErrInvalid, s.Selection.Threshold)
	}
	if _, err := cpm.ParseMethod(s.Selection.Method); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	switch s.Connectivity.Format {
	case FormatStack:
		if s.Connectivity.Subjects == "" {
			return fmt.Errorf("%w: a stack needs a subjects list", ErrInvalid)
		}
	case FormatMatrices:
	case FormatTimeSeries:
		if _, err := connectome.ParseKind(s.Connectivity.Kind); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	default:
		return fmt.Errorf("%w: connectivity format %q not understood", ErrInvalid, s.Connectivity.Format)
	}
	if s.Connectivity.Path == "" {
		return fmt.Errorf("%w: missing connectivity path", ErrInvalid)
	}
	if s.Network != "" && s.Connectivity.Labels == "" {
		return fmt.Errorf("%w: network %q needs region labels", ErrInvalid, s.Network)
	}

	if s.Behavior.Path == "" {
		return fmt.Errorf("%w: missing behavior path", ErrInvalid)
	}
	if s.Behavior.Score == "" {
		return fmt.Errorf("%w: missing behavior score column", ErrInvalid)
	}
	if s.FoldTimeout < 0 {
		return fmt.Errorf("%w: negative fold timeout %s", ErrInvalid, s.FoldTimeout)
	}

	return nil
}

// Resolve joins relative input paths onto dataDir and relative output paths
// onto resultDir. Empty directories leave paths alone.
func (s *Study) Resolve(dataDir, resultDir string) {
	for _, p := range []*string{
		&s.Connectivity.Path,
		&s.Connectivity.Subjects,
		&s.Connectivity.Labels,
		&s.Behavior.Path,
	} {
		*p = join(dataDir, *p)
	}

	for _, p := range []*string{&s.Output.Predictions, &s.Output.SQLite} {
		*p = join(resultDir, *p)
	}
}

func join(dir, p string) string {
	if dir == "" || p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// DriverConfig maps the study onto a cross-validation driver configuration.
func (s *Study) DriverConfig() (cpm.Config, error) {
	method, err := cpm.ParseMethod(s.Selection.Method)
	if err != nil {
		return cpm.Config{}, err
	}

	return cpm.Config{
		Threshold:   s.Selection.Threshold,
		Method:      method,
		Strict:      s.Strict,
		Workers:     s.Workers,
		FoldTimeout: s.FoldTimeout,
	}, nil
}
