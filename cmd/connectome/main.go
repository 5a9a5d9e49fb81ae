package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gonum/matrix/mat64"
	"go.uber.org/zap"

	"github.com/KyungWonPark/Connectome/internal/calc"
	"github.com/KyungWonPark/Connectome/internal/connectome"
	"github.com/KyungWonPark/Connectome/internal/io"
	"github.com/KyungWonPark/Connectome/internal/logging"
)

func main() {
	inDir := flag.String("in", os.Getenv("DATA"), "directory of <subject>.npy regions by timepoints series")
	outDir := flag.String("out", os.Getenv("RESULT"), "output directory")
	kindName := flag.String("kind", "correlation", "correlation or partial_correlation")
	fisher := flag.Bool("fisher", false, "Fisher z-transform the connectivity")
	workers := flag.Int("workers", 0, "kernel workers, one per CPU when 0")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	logger, err := logging.New(*level, true)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	kind, err := connectome.ParseKind(*kindName)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", *outDir, err)
	}

	files, err := filepath.Glob(filepath.Join(*inDir, "*.npy"))
	if err != nil || len(files) == 0 {
		log.Fatalf("No time series found in %s", *inDir)
	}
	sort.Strings(files)

	pl := calc.Init(*workers)
	builder := connectome.NewBuilder(pl, kind, *fisher)

	var subjects []string
	var edges [][]float64
	for i, file := range files {
		subject := strings.TrimSuffix(filepath.Base(file), ".npy")

		ts, err := io.NpytoMat64(file)
		if err != nil {
			logger.Warn("skipping subject", zap.String("subject", subject), zap.Error(err))
			continue
		}

		conn, err := builder.Build(ts)
		if err != nil {
			logger.Warn("skipping subject", zap.String("subject", subject), zap.Error(err))
			continue
		}
		if err := io.Mat64toNpy(filepath.Join(*outDir, subject+".npy"), conn); err != nil {
			log.Fatal(err)
		}

		vec, err := connectome.Vectorize(conn)
		if err != nil {
			log.Fatal(err)
		}
		subjects = append(subjects, subject)
		edges = append(edges, vec)

		fmt.Printf("[%d/%d] %s done\n", i+1, len(files), subject)
	}

	if len(subjects) == 0 {
		log.Fatal("No connectivity matrix built")
	}

	stack := mat64.NewDense(len(edges), len(edges[0]), nil)
	for i, vec := range edges {
		if len(vec) != len(edges[0]) {
			log.Fatalf("%s has %d edges, %s has %d", subjects[i], len(vec), subjects[0], len(edges[0]))
		}
		stack.SetRow(i, vec)
	}

	if err := io.Mat64toNpy(filepath.Join(*outDir, "edges.npy"), stack); err != nil {
		log.Fatal(err)
	}
	if err := io.WriteLines(filepath.Join(*outDir, "subjects.txt"), subjects); err != nil {
		log.Fatal(err)
	}

	logger.Info("connectome stack written",
		zap.String("kind", string(kind)),
		zap.Bool("fisher", *fisher),
		zap.Int("subjects", len(subjects)),
		zap.Int("edges", len(edges[0])))
}
