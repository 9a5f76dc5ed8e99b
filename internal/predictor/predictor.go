package predictor

import (
	"fmt"
	"math"
	"time"

	"healthband-insight/internal/domain"
	"healthband-insight/internal/summary"

	"go.uber.org/zap"
)

// 回看窗口策略：优先取最近 24 小时；窗口为空时退回最近 5 条读数（二者不叠加）
const (
	defaultLookback      = 24 * time.Hour
	defaultFallbackCount = 5
	minTrendReadings     = 4 // 趋势判定至少需要的有效读数
)

// Predictor 健康风险评估器
// 无状态：每次评估重新读取回看窗口，不在调用间保留任何运行状态，
// 结果总是可由存储数据复现
type Predictor struct {
	thresholds    map[domain.MetricType]MetricPolicy
	trends        map[domain.MetricType]TrendRule
	lookback      time.Duration
	fallbackCount int
	logger        *zap.Logger
}

// New 创建评估器（默认阈值表和趋势规则）
func New(logger *zap.Logger) *Predictor {
	return NewWithPolicies(DefaultThresholds, DefaultTrendRules, logger)
}

// NewWithPolicies 创建评估器（自定义策略，用于临床调参）
func NewWithPolicies(
	thresholds map[domain.MetricType]MetricPolicy,
	trends map[domain.MetricType]TrendRule,
	logger *zap.Logger,
) *Predictor {
	return &Predictor{
		thresholds:    thresholds,
		trends:        trends,
		lookback:      defaultLookback,
		fallbackCount: defaultFallbackCount,
		logger:        logger,
	}
}

// Evaluate 按指标类型逐一评估，返回综合风险
// records 为单个用户截至 asOf 的记录（无需预排序）
// 规则顺序固定：缺数据 → 阈值 → 不利趋势 → 正常，首个命中生效；
// 调整顺序会改变边缘场景的分类结果，不可重排
func (p *Predictor) Evaluate(userID string, asOf time.Time, records []domain.MetricRecord) *domain.RiskAssessment {
	asOf = asOf.UTC()
	byType := make(map[domain.MetricType][]domain.MetricRecord)
	for _, rec := range records {
		if rec.Timestamp.After(asOf) {
			continue
		}
		byType[rec.MetricType] = append(byType[rec.MetricType], rec)
	}

	assessment := &domain.RiskAssessment{
		UserID:      userID,
		EvaluatedAt: asOf,
		Overall:     domain.RiskNormal,
	}

	for _, metricType := range domain.AllMetricTypes {
		risk := p.evaluateType(asOf, metricType, byType[metricType])
		assessment.Metrics = append(assessment.Metrics, risk)
		assessment.Overall = domain.MaxRiskLevel(assessment.Overall, risk.Level)
	}

	return assessment
}

// evaluateType 评估单个指标类型
func (p *Predictor) evaluateType(asOf time.Time, metricType domain.MetricType, records []domain.MetricRecord) domain.MetricRisk {
	summary.SortRecords(records)
	values := p.lookbackValues(asOf, records)

	risk := domain.MetricRisk{
		MetricType: metricType,
		Level:      domain.RiskNormal,
		DataPoints: len(values),
	}

	// 规则1：回看窗口无数据 —— 沉默本身就是信号
	if len(values) == 0 {
		risk.Level = domain.RiskWatch
		risk.Reason = domain.ReasonNoRecentData
		return risk
	}

	// 规则2：绝对阈值
	policy, hasPolicy := p.thresholds[metricType]
	if hasPolicy {
		stat := statistic(policy.Stat, values)
		risk.Statistic = &stat
		for _, band := range policy.Bands {
			if band.matches(stat) {
				risk.Level = band.Level
				risk.Reason = domain.ReasonThresholdBreach
				risk.Detail = fmt.Sprintf("%s %.1f %s outside %s band",
					metricType, stat, metricType.Unit(), band.Level)
				return risk
			}
		}
	} else {
		p.logger.Warn("No threshold policy for metric type",
			zap.String("metric_type", string(metricType)),
		)
	}

	// 规则3：不利趋势（前半窗均值 vs 后半窗均值）
	if rule, ok := p.trends[metricType]; ok && len(values) >= minTrendReadings {
		half := len(values) / 2
		change := mean(values[half:]) - mean(values[:half])
		adverse := (rule.Direction == TrendRise && change > rule.Delta) ||
			(rule.Direction == TrendFall && change < -rule.Delta)
		if adverse {
			risk.Level = domain.RiskWatch
			risk.Reason = domain.ReasonAdverseTrend
			risk.Detail = fmt.Sprintf("%s changed %+.1f %s within lookback window",
				metricType, change, metricType.Unit())
			return risk
		}
	}

	// 规则4：正常
	return risk
}

// lookbackValues 提取回看窗口内的有效读数（时序升序）
// 非有限值不参与判定；窗口内全部为非有限值等同于无数据
func (p *Predictor) lookbackValues(asOf time.Time, records []domain.MetricRecord) []float64 {
	cutoff := asOf.Add(-p.lookback)

	var values []float64
	for _, rec := range records {
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		if isFinite(rec.Value) {
			values = append(values, rec.Value)
		}
	}
	if len(values) > 0 {
		return values
	}

	// 24 小时窗口为空：退回最近 N 条（不与时间窗叠加）
	for i := len(records) - 1; i >= 0 && len(values) < p.fallbackCount; i-- {
		if isFinite(records[i].Value) {
			values = append(values, records[i].Value)
		}
	}
	// 倒序收集的，翻转回时序升序
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return values
}

func (b ThresholdBand) matches(v float64) bool {
	if b.Below != nil && v < *b.Below {
		return true
	}
	if b.Above != nil && v > *b.Above {
		return true
	}
	return false
}

func statistic(stat Statistic, values []float64) float64 {
	if stat == StatSum {
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	}
	return values[len(values)-1]
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
