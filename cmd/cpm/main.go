package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/KyungWonPark/Connectome/internal/config"
	"github.com/KyungWonPark/Connectome/internal/cpm"
	"github.com/KyungWonPark/Connectome/internal/io"
	"github.com/KyungWonPark/Connectome/internal/logging"
	"github.com/KyungWonPark/Connectome/internal/store"
)

func main() {
	configPath := flag.String("config", "study.yaml", "study configuration file")
	flag.Parse()

	study, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(study.Log.Level, study.Log.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, study, logger); err != nil {
		logger.Error("cpm failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, study *config.Study, logger *zap.Logger) error {
	table, err := loadConnectivity(study, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d connectivity records\n", table.Len())

	ds, err := loadDataset(study, table, logger)
	if err != nil {
		return err
	}
	fmt.Printf("%d subjects, %d edges, %d confounds\n", ds.Len(), ds.NumEdges(), ds.Design.NumConfounds())

	cfg, err := study.DriverConfig()
	if err != nil {
		return err
	}
	cfg.Logger = logger

	if study.Output.SQLite != "" {
		label := strings.Join([]string{study.Group, study.Metric, networkName(study.Network), string(cfg.Method)}, "/")
		sink, err := store.OpenSQLite(ctx, study.Output.SQLite, label, logger)
		if err != nil {
			return err
		}
		defer sink.Close()
		cfg.Sink = sink
	}

	drv, err := cpm.NewDriver(cfg)
	if err != nil {
		return err
	}

	res, err := drv.Run(ctx, ds)
	if err != nil {
		return err
	}

	for _, f := range res.Failures {
		fmt.Printf("Fold %d (%s) excluded: %v\n", f.Index, f.Subject, f.Err)
	}
	for _, s := range []cpm.Sign{cpm.Positive, cpm.Negative} {
		perf := res.Performance(s)
		fmt.Printf("%s model: r = %.4f, p = %.4g, MAE = %.4f, RMSE = %.4f (n = %d)\n",
			s, perf.R, perf.P, perf.MAE, perf.RMSE, perf.N)
		fmt.Printf("%s consensus edges: %d\n", s, res.Consensus(s).Count())
	}

	if study.Output.Predictions != "" {
		if err := io.WritePredictions(study.Output.Predictions, res); err != nil {
			return err
		}
		fmt.Println("Predictions written to", study.Output.Predictions)
	}

	return nil
}

func networkName(n string) string {
	if n == "" {
		return "whole-brain"
	}
	return n
}
