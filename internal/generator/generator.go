package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"healthband-insight/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config 生成器配置
type Config struct {
	DropoutRate float64 // 故意丢弃的桶比例（模拟传感器掉线，默认 0.15）
	BatchSize   int     // 批量写入大小（默认 1000）
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		DropoutRate: 0.15,
		BatchSize:   1000,
	}
}

// Writer 批量写入接口（由 repository 实现）
type Writer interface {
	InsertMetricsBatch(ctx context.Context, records []domain.MetricRecord) error
}

// 各指标类型的传感器型号池（来源标签，无语义）
var sensorModels = map[domain.MetricType][]string{
	domain.MetricSpO2:        {"PulseOx-100", "OxySense-200", "HealthTrack-SPO2"},
	domain.MetricHeartRate:   {"HR-Monitor-1", "CardioTrack-100", "PulsePro-200"},
	domain.MetricSkinTemp:    {"TempSense-1", "SkinTemp-100", "BodyTemp-Pro"},
	domain.MetricAmbientTemp: {"AmbientTemp-1", "RoomSense-100", "EnvTemp-Pro"},
	domain.MetricSteps:       {"StepCounter-1", "ActivityTrack-100", "MoveSense-Pro"},
	domain.MetricSleep:       {"SleepTrack-1", "RestMonitor-100", "SleepSense-Pro"},
}

// Generator 合成历史数据生成器
// 覆盖三种采样节奏：近期（7天/每小时）、中期（30天/每12小时）、
// 历史（monthsBack个月/每4小时），带昼夜节律和故意的数据缺口，
// 用于喂养和验证汇总/预测链路
type Generator struct {
	writer Writer
	config Config
	logger *zap.Logger
}

// New 创建生成器
func New(writer Writer, cfg Config, logger *zap.Logger) *Generator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Generator{
		writer: writer,
		config: cfg,
		logger: logger,
	}
}

// GenerateHistory 为用户生成截至当前时刻的合成历史，返回写入记录数
// 相同 seed 产出相同数量和类型分布；不同用户互不影响
func (g *Generator) GenerateHistory(ctx context.Context, userID string, monthsBack int, seed int64) (int, error) {
	return g.GenerateHistoryAt(ctx, userID, monthsBack, seed, time.Now().UTC())
}

// GenerateHistoryAt 同 GenerateHistory，显式指定历史终点（测试用）
func (g *Generator) GenerateHistoryAt(ctx context.Context, userID string, monthsBack int, seed int64, end time.Time) (int, error) {
	if monthsBack <= 0 {
		monthsBack = 1
	}
	end = end.UTC()
	rng := rand.New(rand.NewSource(seed))

	// 三种采样节奏（与服务端假设的近期/中期/历史一致）
	recentStart := end.AddDate(0, 0, -7)
	mediumStart := end.AddDate(0, 0, -30)
	historyStart := end.AddDate(0, 0, -30*monthsBack)

	written := 0
	var batch []domain.MetricRecord

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := g.writer.InsertMetricsBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to write synthetic batch: %w", err)
		}
		written += len(batch)
		g.logger.Debug("Synthetic batch written",
			zap.String("user_id", userID),
			zap.Int("batch_size", len(batch)),
		)
		batch = batch[:0]
		return nil
	}

	emit := func(start, until time.Time, step time.Duration) error {
		for tick := start; tick.Before(until); tick = tick.Add(step) {
			for _, metricType := range domain.AllMetricTypes {
				rec, ok := g.sample(rng, userID, metricType, tick)
				if !ok {
					continue
				}
				batch = append(batch, rec)
				if len(batch) >= g.config.BatchSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	if err := emit(recentStart, end, time.Hour); err != nil {
		return written, err
	}
	if err := emit(mediumStart, recentStart, 12*time.Hour); err != nil {
		return written, err
	}
	if monthsBack > 1 {
		if err := emit(historyStart, mediumStart, 4*time.Hour); err != nil {
			return written, err
		}
	}
	if err := flush(); err != nil {
		return written, err
	}

	g.logger.Info("Synthetic history generated",
		zap.String("user_id", userID),
		zap.Int("months_back", monthsBack),
		zap.Int64("seed", seed),
		zap.Int("records", written),
	)
	return written, nil
}

// sample 生成单个时间点的读数；命中掉线比例或类型在该时段不产数时返回 false
func (g *Generator) sample(rng *rand.Rand, userID string, metricType domain.MetricType, tick time.Time) (domain.MetricRecord, bool) {
	hour := tick.Hour()

	// 睡眠数据只在夜间时段产出（22:00–06:00），记录该区间内的睡眠小时数
	if metricType == domain.MetricSleep && hour < 22 && hour > 6 {
		return domain.MetricRecord{}, false
	}

	// 故意丢桶，保证窗口引擎的缺口路径被生成数据覆盖到
	if rng.Float64() < g.config.DropoutRate {
		return domain.MetricRecord{}, false
	}

	value := g.value(rng, metricType, hour)
	models := sensorModels[metricType]
	ts := tick.Add(time.Duration(rng.Intn(60))*time.Minute + time.Duration(rng.Intn(60))*time.Second)

	return domain.MetricRecord{
		ID:          uuid.NewString(),
		MetricType:  metricType,
		Value:       value,
		Unit:        metricType.Unit(),
		SensorModel: models[rng.Intn(len(models))],
		Timestamp:   ts,
		UserID:      userID,
	}, true
}

// value 按类型和时段生成贴近真实的数值（昼夜节律）
func (g *Generator) value(rng *rand.Rand, metricType domain.MetricType, hour int) float64 {
	switch metricType {
	case domain.MetricHeartRate:
		// 心率昼夜曲线：夜间低谷、白天峰值
		switch {
		case hour >= 2 && hour <= 6:
			return round1(uniform(rng, 50, 65))
		case hour >= 7 && hour <= 9:
			return round1(uniform(rng, 65, 85))
		case hour >= 10 && hour <= 18:
			return round1(uniform(rng, 70, 100))
		default:
			return round1(uniform(rng, 65, 85))
		}
	case domain.MetricSpO2:
		return round1(uniform(rng, 96.0, 99.5))
	case domain.MetricSteps:
		// 活跃时段步数更多
		switch {
		case hour >= 6 && hour <= 9:
			return float64(500 + rng.Intn(1501))
		case hour >= 12 && hour <= 14:
			return float64(300 + rng.Intn(1201))
		case hour >= 17 && hour <= 20:
			return float64(800 + rng.Intn(1701))
		default:
			return float64(rng.Intn(501))
		}
	case domain.MetricSleep:
		return round1(uniform(rng, 0.5, 2.0))
	case domain.MetricSkinTemp:
		return round1(uniform(rng, 36.2, 37.4))
	case domain.MetricAmbientTemp:
		return round1(uniform(rng, 18.0, 25.0))
	}
	return 0
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
