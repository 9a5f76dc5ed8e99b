package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config healthband-insight 服务配置
type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
		MaxConns int
		MaxIdle  int
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Generator struct {
		DropoutRate float64 // 合成数据的丢桶比例
		BatchSize   int     // 批量写入大小
	}
	Monitor struct {
		IntervalSec int // 周期性风险评估间隔（秒）
		RiskTTLSec  int // Redis 中风险评估的过期时间（秒）
	}
}

// Load 从环境变量加载配置
func Load() *Config {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "healthband")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Generator.DropoutRate = parseFloat(getEnv("GENERATOR_DROPOUT_RATE", "0.15"), 0.15)
	cfg.Generator.BatchSize = parseInt(getEnv("GENERATOR_BATCH_SIZE", "1000"), 1000)

	cfg.Monitor.IntervalSec = parseInt(getEnv("MONITOR_INTERVAL_SEC", "300"), 300)
	cfg.Monitor.RiskTTLSec = parseInt(getEnv("RISK_CACHE_TTL_SEC", "900"), 900)

	return cfg
}

// DSN PostgreSQL 连接串
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Database, c.Database.SSLMode)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
