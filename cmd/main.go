package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"gpgsweep/config"
	"gpgsweep/gpg"
	"gpgsweep/logger"
	"gpgsweep/report"
	"gpgsweep/scanner"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	metrics := report.Metrics{
		StartTime: time.Now().Format(time.RFC3339),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go handleSignalEvent(cancel, sigChan)

	files, err := scanner.Scan(cfg.Directory, cfg.Recursive)
	if err != nil {
		logger.Fatalf("Scanning failed: %v", err)
	}
	metrics.TotalFiles = len(files)

	inspector := gpg.NewPacketInspector()
	classifier := scanner.NewClassifier(inspector, cfg)

	var ioLimiter *rate.Limiter
	if cfg.MaxIOPerSecond > 0 {
		ioLimiter = rate.NewLimiter(rate.Limit(cfg.MaxIOPerSecond), cfg.MaxIOPerSecond)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Classifying files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(progressVisible()),
	)

	records := make([]report.FileRecord, 0, len(files))
	for _, path := range files {
		select {
		case <-ctx.Done():
			logger.Fatalf("Scan interrupted: %v", ctx.Err())
		default:
		}
		if ioLimiter != nil {
			if err := ioLimiter.Wait(ctx); err != nil {
				logger.Fatalf("Scan interrupted: %v", err)
			}
		}
		rec := classifier.Classify(ctx, path)
		if rec.IsEncrypted {
			metrics.FilesEncrypted++
		}
		records = append(records, rec)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	metrics.EndTime = time.Now().Format(time.RFC3339)

	if !cfg.SuppressOutput {
		fmt.Print(report.Render(records))
	}

	if cfg.OutFile != "" {
		switch cfg.OutputFormat {
		case "ndjson":
			err = report.WriteNDJSON(records, metrics, cfg.OutFile, cfg.AllowClobber)
		default:
			err = report.WriteCSV(records, cfg.OutFile, cfg.AllowClobber)
		}
		if err != nil {
			logger.Fatalf("Failed to write report: %v", err)
		}
		logger.Infof("Report written to %s", cfg.OutFile)
	}

	logger.Infof("Scan completed: %d files, %d encrypted.", metrics.TotalFiles, metrics.FilesEncrypted)
}

func handleSignalEvent(cancelFunc context.CancelFunc, sigChan chan os.Signal) {
	<-sigChan
	logger.Info("Interrupt signal received. Shutting down...")
	cancelFunc()
}

func progressVisible() bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv("GPGSWEEP_DISABLE_PROGRESS")))
	return value != "1" && value != "true" && value != "yes" && value != "on"
}
