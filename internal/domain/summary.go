package domain

import "time"

// Granularity 分桶粒度（由查询跨度决定）
type Granularity string

const (
	GranularityHour  Granularity = "hour"  // 跨度 ≤ 7 天
	GranularityDay   Granularity = "day"   // 7 天 < 跨度 ≤ 60 天
	GranularityMonth Granularity = "month" // 跨度 > 60 天
)

// BucketStats 单个时间桶的统计结果
// 空桶（无数据）count = 0，Min/Max/Mean/Last 为 nil —— 显式的 "no data"，
// 调用方可据此识别数据缺口
type BucketStats struct {
	BucketStart    time.Time `json:"bucket_start"`
	BucketEnd      time.Time `json:"bucket_end"`
	Count          int       `json:"count"`
	Min            *float64  `json:"min"`
	Max            *float64  `json:"max"`
	Mean           *float64  `json:"mean"`
	Last           *float64  `json:"last"`
	MalformedCount int       `json:"malformed_count"` // 非有限值记录数（不参与数值计算）
}

// SummaryResult 单个指标类型的汇总结果（查询时派生，不落库）
// Range 是对完整过滤集合的独立计算，不是桶结果的二次聚合
type SummaryResult struct {
	MetricType  MetricType    `json:"metric_type"`
	Unit        string        `json:"unit"`
	Granularity Granularity   `json:"granularity"`
	Buckets     []BucketStats `json:"buckets"`
	Range       BucketStats   `json:"range"`
}
