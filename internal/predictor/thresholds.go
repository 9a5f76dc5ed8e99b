package predictor

import "healthband-insight/internal/domain"

// Statistic 参与阈值判定的统计量
// 累积型指标（步数/睡眠）看窗口总量，其余看最近一条读数
type Statistic string

const (
	StatLast Statistic = "last" // 回看窗口内最近一条读数
	StatSum  Statistic = "sum"  // 回看窗口内读数之和
)

// ThresholdBand 单条阈值带
// Below/Above 为界值指针（nil 表示该方向不设界）：
// value < *Below 或 value > *Above 即命中，按列表顺序首个命中生效
type ThresholdBand struct {
	Below *float64
	Above *float64
	Level domain.RiskLevel
}

// MetricPolicy 单个指标类型的阈值策略
type MetricPolicy struct {
	Stat  Statistic
	Bands []ThresholdBand // 有序：严重级别在前
}

// TrendDirection 不利趋势方向
type TrendDirection string

const (
	TrendRise TrendDirection = "rise" // 后半窗均值相对前半窗上升
	TrendFall TrendDirection = "fall" // 后半窗均值相对前半窗下降
)

// TrendRule 不利趋势规则：指定方向上的变化超过 Delta 即 WATCH
type TrendRule struct {
	Direction TrendDirection
	Delta     float64
}

// DefaultThresholds 各指标类型的默认阈值带
// 临床界值是配置表而非散落的分支逻辑，可独立于评估算法审计和调整；
// 默认值取自数据模型注释的正常范围，上线前需经临床策略确认
var DefaultThresholds = map[domain.MetricType]MetricPolicy{
	domain.MetricSpO2: {
		Stat: StatLast,
		Bands: []ThresholdBand{
			{Below: f(90), Level: domain.RiskAlert},
			{Below: f(95), Level: domain.RiskWatch},
		},
	},
	domain.MetricHeartRate: {
		Stat: StatLast,
		Bands: []ThresholdBand{
			{Below: f(50), Level: domain.RiskAlert},
			{Above: f(120), Level: domain.RiskAlert},
			{Below: f(60), Level: domain.RiskWatch},
			{Above: f(100), Level: domain.RiskWatch},
		},
	},
	domain.MetricSkinTemp: {
		Stat: StatLast,
		Bands: []ThresholdBand{
			{Below: f(34.0), Level: domain.RiskAlert},
			{Above: f(39.5), Level: domain.RiskAlert},
			{Below: f(35.0), Level: domain.RiskWatch},
			{Above: f(38.5), Level: domain.RiskWatch},
		},
	},
	domain.MetricAmbientTemp: {
		Stat: StatLast,
		Bands: []ThresholdBand{
			{Below: f(10.0), Level: domain.RiskAlert},
			{Above: f(38.0), Level: domain.RiskAlert},
			{Below: f(16.0), Level: domain.RiskWatch},
			{Above: f(28.0), Level: domain.RiskWatch},
		},
	},
	domain.MetricSteps: {
		// 全天步数总量过低 → WATCH（低活动量不是急症，不设 ALERT 带）
		Stat: StatSum,
		Bands: []ThresholdBand{
			{Below: f(500), Level: domain.RiskWatch},
		},
	},
	domain.MetricSleep: {
		Stat: StatSum,
		Bands: []ThresholdBand{
			{Below: f(2.0), Level: domain.RiskAlert},
			{Below: f(4.0), Level: domain.RiskWatch},
		},
	},
}

// DefaultTrendRules 各指标类型的不利趋势规则
// 累积型指标（步数/睡眠）不做趋势判定
var DefaultTrendRules = map[domain.MetricType]TrendRule{
	domain.MetricHeartRate:   {Direction: TrendRise, Delta: 15.0},
	domain.MetricSpO2:        {Direction: TrendFall, Delta: 3.0},
	domain.MetricSkinTemp:    {Direction: TrendRise, Delta: 1.0},
	domain.MetricAmbientTemp: {Direction: TrendRise, Delta: 8.0},
}

func f(v float64) *float64 { return &v }
