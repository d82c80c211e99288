package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"agencycms/internal/api"
	"agencycms/internal/auth"
	"agencycms/internal/config"
	"agencycms/internal/database"
	"agencycms/internal/storage"
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
	if err := database.Migrate(db); err != nil {
		logger.Error("migrate database failed", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer redisClient.Close()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("init storage failed", slog.Any("error", err))
		os.Exit(1)
	}

	privatePEM, publicPEM, err := cfg.Auth.ReadKeyPair()
	if err != nil {
		logger.Error("read jwt key pair failed", slog.Any("error", err))
		os.Exit(1)
	}
	authService, err := auth.NewAuthService(privatePEM, publicPEM, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		logger.Error("init auth service failed", slog.Any("error", err))
		os.Exit(1)
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, authService, api.Handlers{
		Auth: api.NewAuthHandler(db, authService, redisClient, logger,
			cfg.Auth.LoginRateLimitPerHour, cfg.Auth.LoginLockThreshold, cfg.Auth.LoginLockTTL),
		Assets:         api.NewAssetHandler(storageClient, logger, api.ClamdScanner(cfg.Uploads.ClamdAddr), cfg.Uploads.MaxBytes),
		Services:       api.NewServiceHandler(db, storageClient),
		Industries:     api.NewIndustryHandler(db),
		Projects:       api.NewProjectHandler(db, storageClient),
		ProjectTags:    api.NewProjectTagHandler(db),
		Testimonials:   api.NewTestimonialHandler(db, storageClient),
		BlogCategories: api.NewBlogCategoryHandler(db),
		BlogTags:       api.NewBlogTagHandler(db),
		BlogPosts:      api.NewBlogHandler(db, storageClient),
		Packages:       api.NewPackageHandler(db),
		Leads:          api.NewLeadHandler(db, asynqClient),
		TeamMembers:    api.NewTeamMemberHandler(db, storageClient),
		Jobs:           api.NewJobHandler(db),
		Applications: api.NewJobApplicationHandler(db, storageClient, asynqClient,
			api.ClamdScanner(cfg.Uploads.ClamdAddr), cfg.Uploads.MaxBytes),
		FAQs:     api.NewFAQHandler(db),
		Invoices: api.NewInvoiceHandler(db),
		Settings: api.NewSettingsHandler(db),
		Users:    api.NewUserHandler(db, authService, storageClient),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api server starting", slog.Int("port", cfg.API.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("api server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("api server shutdown failed", slog.Any("error", err))
	}
}
