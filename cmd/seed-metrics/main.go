package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"healthband-insight/internal/config"
	"healthband-insight/internal/generator"
	"healthband-insight/internal/repository"
	"healthband-insight/internal/service"

	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

// seed-metrics 为指定用户生成合成历史数据（测试/联调用）
func main() {
	userID := flag.String("user", "", "user ID to seed metrics for (required)")
	months := flag.Int("months", 12, "months of history to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	dropout := flag.Float64("dropout", -1, "bucket dropout rate (default from env)")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-metrics -user <user-id> [-months N] [-seed N] [-dropout F]")
		os.Exit(2)
	}

	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	genCfg := generator.Config{
		DropoutRate: cfg.Generator.DropoutRate,
		BatchSize:   cfg.Generator.BatchSize,
	}
	if *dropout >= 0 {
		genCfg.DropoutRate = *dropout
	}

	metricsRepo := repository.NewPostgresMetricsRepo(db, logger)
	gen := generator.New(metricsRepo, genCfg, logger)
	genService := service.NewGeneratorService(gen, logger)

	resp, err := genService.GenerateSyntheticHistory(context.Background(), service.GenerateSyntheticHistoryRequest{
		UserID:     *userID,
		MonthsBack: *months,
		Seed:       *seed,
	})
	if err != nil {
		logger.Fatal("Failed to generate synthetic history", zap.Error(err))
	}

	logger.Info("Seeding completed",
		zap.String("user_id", *userID),
		zap.Int("months", *months),
		zap.Int64("seed", *seed),
		zap.Int("records_written", resp.RecordsWritten),
	)
}
