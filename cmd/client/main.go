package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/clinicsync/internal/client/api"
	"github.com/iudanet/clinicsync/internal/client/auth"
	"github.com/iudanet/clinicsync/internal/client/cli"
	"github.com/iudanet/clinicsync/internal/client/desk"
	"github.com/iudanet/clinicsync/internal/client/iocli"
	"github.com/iudanet/clinicsync/internal/client/notify"
	"github.com/iudanet/clinicsync/internal/client/storage/boltdb"
	"github.com/iudanet/clinicsync/internal/client/sync"
	"github.com/iudanet/clinicsync/internal/config"
	"github.com/iudanet/clinicsync/internal/guides"
	"github.com/iudanet/clinicsync/internal/metrics"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Глобальные флаги, значения по умолчанию из окружения
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", cfg.ServerURL, "Server URL")
	dbPath := flag.String("db", cfg.DBPath, "Path to local database")
	password := flag.String("password", "", "Operator password (not recommended, use env var or file)")
	passwordFile := flag.String("password-file", "", "Path to file containing operator password")
	metricsAddr := flag.String("metrics", "", "Expose sync metrics in watch mode")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}
	command := args[0]

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))
	ctx := context.Background()

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(*serverURL, api.WithTimeout(cfg.HTTPTimeout))
	registry := prometheus.NewRegistry()

	notifier := notify.New(apiClient, apiClient, boltStorage, logger, guides.MessageOptions{
		BaseURL:    cfg.SiteURL,
		DoctorName: cfg.DoctorName,
		Language:   cfg.Language,
	})
	engine := sync.NewEngine(apiClient, boltStorage, apiClient, logger,
		sync.WithMetrics(metrics.NewSyncMetrics(registry)),
		sync.WithNotifier(notifier),
	)

	// desk будит runner после каждой записи в очередь, в watch это сразу запускает проход
	var app *cli.Cli
	deskService := desk.NewService(boltStorage, desk.OnChange(func() { app.QueueChanged() }))
	app = cli.New(stdio, auth.NewService(apiClient, boltStorage, logger), deskService, engine, logger)
	app.SetPasswords(cli.Passwords{FromFile: *passwordFile, FromArgs: *password})
	app.SetDirectory(apiClient)
	app.SetWatchOptions(cli.WatchOptions{
		Registry:      registry,
		MetricsAddr:   *metricsAddr,
		Interval:      cfg.SyncInterval,
		Jitter:        cfg.SyncJitter,
		Online:        apiClient,
		OnlineCheck: cfg.OnlineCheck,
	})

	if err := app.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// defer не выполнится после os.Exit
		_ = boltStorage.Close()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("clinicsync desk client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
