package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "neoncv/internal/adapter/http"
	repo "neoncv/internal/adapter/repository"
	"neoncv/internal/config"
	"neoncv/internal/download"
	"neoncv/internal/infrastructure/migration"
	"neoncv/internal/usecase"
	infra "neoncv/pkg/infrastructure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the audit log is optional; exports keep working without it
	jobsPool, err := infra.NewJobsPool(ctx, cfg.JobsDatabaseURL)
	if err != nil {
		slog.Warn("jobs DB not available", "error", err)
		jobsPool = nil
	} else {
		defer jobsPool.Close()
		if err := migration.RunMigrations(ctx, jobsPool); err != nil {
			slog.Warn("jobs DB migrations failed", "error", err)
		}
	}
	jobsRepo := repo.NewJobsRepo(jobsPool)

	var inliner *infra.ImageInliner
	if cfg.InlineRemoteImages {
		inliner = infra.NewImageInliner(infra.InlinerOptions{MaxConcurrent: cfg.InlineConcurrency})
		defer inliner.Close()
	}
	rasterizer := infra.NewChromedpRasterizer(cfg.ChromePath, cfg.RenderTimeout, inliner)

	exporter := usecase.NewExporter(rasterizer, jobsRepo, download.NewMemoryRegistry())
	app := httpadapter.NewApp(httpadapter.NewHandler(exporter), cfg.BodyLimit)

	go func() {
		slog.Info("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("shutdown", "error", err)
	}
}
