package domain

import (
	"errors"
	"fmt"
	"time"
)

// MetricType 指标类型（闭合枚举）
// 数据库中以自由文本存储，在 repository 层通过 ParseMetricType 翻译，
// 引擎内部只使用枚举值
type MetricType string

const (
	MetricSpO2        MetricType = "SPO2"                // 血氧饱和度（%）
	MetricHeartRate   MetricType = "HEART_RATE"          // 心率（bpm）
	MetricSkinTemp    MetricType = "SKIN_TEMPERATURE"    // 皮肤温度（°C）
	MetricAmbientTemp MetricType = "AMBIENT_TEMPERATURE" // 环境温度（°C）
	MetricSteps       MetricType = "STEPS"               // 步数（steps）
	MetricSleep       MetricType = "SLEEP"               // 睡眠时长（hours）
)

// AllMetricTypes 所有指标类型（顺序固定，用于遍历和汇总输出）
var AllMetricTypes = []MetricType{
	MetricSpO2,
	MetricHeartRate,
	MetricSkinTemp,
	MetricAmbientTemp,
	MetricSteps,
	MetricSleep,
}

// ErrUnknownMetricType 未知指标类型（边界校验错误，不做静默转换）
var ErrUnknownMetricType = errors.New("unknown metric type")

// ErrInvalidRange 非法时间范围（endDate 早于 startDate）
var ErrInvalidRange = errors.New("invalid date range")

// ParseMetricType 将存储层的自由文本翻译为指标类型枚举
// 兼容原始 schema 中的小写形式（如 "heart_rate"）
func ParseMetricType(s string) (MetricType, error) {
	switch s {
	case "SPO2", "spo2":
		return MetricSpO2, nil
	case "HEART_RATE", "heart_rate":
		return MetricHeartRate, nil
	case "SKIN_TEMPERATURE", "skin_temperature":
		return MetricSkinTemp, nil
	case "AMBIENT_TEMPERATURE", "ambient_temperature":
		return MetricAmbientTemp, nil
	case "STEPS", "steps":
		return MetricSteps, nil
	case "SLEEP", "sleep":
		return MetricSleep, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetricType, s)
}

// Unit 指标单位
func (t MetricType) Unit() string {
	switch t {
	case MetricSpO2:
		return "%"
	case MetricHeartRate:
		return "bpm"
	case MetricSkinTemp, MetricAmbientTemp:
		return "°C"
	case MetricSteps:
		return "steps"
	case MetricSleep:
		return "hours"
	}
	return ""
}

// StorageValue 存储层的表示（与原始 schema 保持一致，小写）
func (t MetricType) StorageValue() string {
	switch t {
	case MetricSpO2:
		return "spo2"
	case MetricHeartRate:
		return "heart_rate"
	case MetricSkinTemp:
		return "skin_temperature"
	case MetricAmbientTemp:
		return "ambient_temperature"
	case MetricSteps:
		return "steps"
	case MetricSleep:
		return "sleep"
	}
	return string(t)
}

// MetricRecord 一条观测记录（对应 metrics 表）
// timestamp 是记录的逻辑时间（UTC），与行创建时间 created_at 区分；
// 同一用户的记录按 (timestamp, created_at, id) 全序排列
type MetricRecord struct {
	ID          string     `db:"id"`           // VARCHAR(36), UUID
	MetricType  MetricType `db:"metric_type"`  // VARCHAR, 存储为小写自由文本
	Value       float64    `db:"value"`        // DOUBLE PRECISION
	Unit        string     `db:"unit"`         // VARCHAR, 随类型冗余存储
	SensorModel string     `db:"sensor_model"` // VARCHAR, 来源标签（无语义）
	Timestamp   time.Time  `db:"timestamp"`    // TIMESTAMPTZ, NOT NULL
	UserID      string     `db:"user_id"`      // VARCHAR(36), FK users.id
	CreatedAt   time.Time  `db:"created_at"`   // TIMESTAMPTZ
	DeletedAt   *time.Time `db:"deleted_at"`   // 软删除标记，所有读取过滤
}
