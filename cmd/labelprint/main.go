package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pexcode/qds-print-sdk/internal/bootstrap"
	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/config"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/logger"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/printing"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath string
		inputPath  string
		logLevel   string
		retain     time.Duration
	)

	flag.StringVar(&configPath, "config", "", "Path to a TOML config file (default: ./config.toml if present)")
	flag.StringVar(&inputPath, "input", "-", "JSON array of shipment records, - for stdin")
	flag.StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.DurationVar(&retain, "retain", 0, "Delete stored filesystem PDFs older than this before printing (0 keeps everything)")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	records, err := readRecords(inputPath)
	if err != nil {
		log.Fatal("Failed to read shipment records", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to start label printing", zap.Error(err))
	}

	if fs, ok := rt.Store.(*printing.FileSystemStorage); ok && retain > 0 {
		removed, err := fs.CleanupOlderThan(ctx, retain)
		if err != nil {
			log.Warn("Failed to clean up stored labels", zap.Error(err))
		} else if removed > 0 {
			log.Info("Removed stored labels", zap.Int("count", removed), zap.Duration("older_than", retain))
		}
	}

	result := rt.Service.PrintBatch(ctx, records)

	if err := rt.Close(context.WithoutCancel(ctx)); err != nil {
		log.Error("Error shutting down", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error("Failed to write result", zap.Error(err))
	}

	if result.Failure != nil {
		_ = logger.Sync(log)
		os.Exit(2)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func readRecords(path string) ([]labeling.ShipmentRecord, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var records []labeling.ShipmentRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
