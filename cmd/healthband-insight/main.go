package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthband-insight/internal/config"
	"healthband-insight/internal/predictor"
	"healthband-insight/internal/repository"
	"healthband-insight/internal/service"
	"healthband-insight/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()

	// 2. 初始化日志
	logger, err := initLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 3. 连接数据库
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdle)
	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	defer db.Close()

	// 4. 连接 Redis（最新风险评估的发布端）
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to ping redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 5. 组装各层
	metricsRepo := repository.NewPostgresMetricsRepo(db, logger)
	usersRepo := repository.NewPostgresUsersRepo(db, logger)
	kv := store.NewRedisKV(redisClient)

	healthService := service.NewHealthPredictionService(
		metricsRepo,
		predictor.New(logger),
		kv,
		time.Duration(cfg.Monitor.RiskTTLSec)*time.Second,
		logger,
	)
	monitor := service.NewMonitor(
		usersRepo,
		healthService,
		time.Duration(cfg.Monitor.IntervalSec)*time.Second,
		logger,
	)

	// 6. 启动评估循环（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- monitor.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Monitor error", zap.Error(err))
		}
	}

	logger.Info("healthband-insight stopped")
}

// initLogger 初始化日志
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Format == "json" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
