package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"seknuto-api/internal/availability"
	"seknuto-api/internal/catalog"
	"seknuto-api/internal/config"
	"seknuto-api/internal/coupon"
	"seknuto-api/internal/email"
	"seknuto-api/internal/pricing"
	"seknuto-api/internal/server"
	"seknuto-api/internal/storage"
	"seknuto-api/pkg/logger"
	"seknuto-api/pkg/redis"
)

// ENTRY POINT

func main() {
	zapLogger, err := logger.New()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	redisClient := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
	defer redisClient.Close()

	// The coupon cache degrades to plain Postgres reads when Redis is
	// down, so a failed ping is worth a warning, not a refusal to start.
	if err := redisClient.Ping(ctx); err != nil {
		zapLogger.Warn("Redis unreachable, coupon cache disabled", zap.Error(err))
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, storage.Config{
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}, redisClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	var notifier email.Notifier = email.Noop{}
	if cfg.EmailEnabled() {
		notifier, err = email.NewSMTPNotifier(email.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			User:       cfg.SMTPUser,
			Password:   cfg.SMTPPassword,
			From:       cfg.SenderEmail,
			AdminEmail: cfg.AdminEmail,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to init email notifier", zap.Error(err))
		}
	} else {
		zapLogger.Warn("SMTP not configured, email notifications disabled")
	}

	cat := catalog.Default()

	srv := server.New(server.Options{
		Addr:            cfg.HTTPAddr,
		CORSOrigins:     cfg.CORSOrigins,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Catalog:         cat,
		Calculator:      pricing.NewCalculator(cat),
		Validator:       coupon.NewValidator(pgStorage),
		Availability:    availability.New(cfg.BookingWindowDays),
		Store:           pgStorage,
		Notifier:        notifier,
		Logger:          zapLogger,
	})

	if err := srv.Run(ctx); err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}

	zapLogger.Info("Server shutdown gracefully")
}
