package domain

import "time"

// RiskLevel 风险级别（按严重程度排序：ALERT > WATCH > NORMAL）
type RiskLevel string

const (
	RiskNormal RiskLevel = "NORMAL"
	RiskWatch  RiskLevel = "WATCH"
	RiskAlert  RiskLevel = "ALERT"
)

// Severity 严重程度序数（用于取最大值）
func (l RiskLevel) Severity() int {
	switch l {
	case RiskAlert:
		return 2
	case RiskWatch:
		return 1
	}
	return 0
}

// MaxRiskLevel 返回两者中严重程度更高的级别
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// 风险触发原因（每个类型保留各自的原因，不合并为单一标志）
const (
	ReasonNoRecentData    = "no recent data"
	ReasonThresholdBreach = "threshold breach"
	ReasonAdverseTrend    = "adverse trend"
)

// MetricRisk 单个指标类型的风险评估
type MetricRisk struct {
	MetricType MetricType `json:"metric_type"`
	Level      RiskLevel  `json:"level"`
	Reason     string     `json:"reason,omitempty"` // 触发规则（阈值/缺数据/趋势）
	Detail     string     `json:"detail,omitempty"` // 人类可读说明（含数值）
	DataPoints int        `json:"data_points"`      // 回看窗口内的有效记录数
	Statistic  *float64   `json:"statistic,omitempty"` // 参与判定的统计量（末值或窗口和）
}

// RiskAssessment 综合风险评估（查询时派生，不落库）
// Overall 为所有类型中严重程度最高的级别
type RiskAssessment struct {
	UserID      string       `json:"user_id"`
	EvaluatedAt time.Time    `json:"evaluated_at"`
	Overall     RiskLevel    `json:"overall"`
	Metrics     []MetricRisk `json:"metrics"`
}

// RiskFor 返回指定类型的评估结果（不存在时返回 nil）
func (a *RiskAssessment) RiskFor(t MetricType) *MetricRisk {
	for i := range a.Metrics {
		if a.Metrics[i].MetricType == t {
			return &a.Metrics[i]
		}
	}
	return nil
}
