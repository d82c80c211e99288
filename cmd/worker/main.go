package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"agencycms/internal/config"
	"agencycms/internal/database"
	"agencycms/internal/metrics"
	"agencycms/internal/tasks"
	"agencycms/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		logger.Error("init database failed", slog.Any("error", err))
		os.Exit(1)
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr()},
		asynq.Config{
			Concurrency: 5,
			Logger:      worker.NewAsynqSlogAdapter(logger),
		},
	)

	notifier := worker.NewLogNotifier(logger)
	handler := worker.NewNotifyTaskHandler(db, notifier, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.HandleFunc(tasks.TypeLeadNotify, handler.HandleLeadNotify)
	mux.HandleFunc(tasks.TypeApplicationNotify, handler.HandleApplicationNotify)

	logger.Info("worker starting")
	if err := server.Run(mux); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
}
