package summary

import (
	"math"

	"healthband-insight/internal/domain"
)

// Aggregate 对单个指标类型的记录序列做分桶汇总
// 输入无需预排序；非有限值（NaN/Inf）不参与数值计算，单独计入 MalformedCount
func Aggregate(metricType domain.MetricType, records []domain.MetricRecord, w *Window) *domain.SummaryResult {
	SortRecords(records)

	result := &domain.SummaryResult{
		MetricType:  metricType,
		Unit:        metricType.Unit(),
		Granularity: w.Granularity,
		Buckets:     make([]domain.BucketStats, len(w.Spans)),
	}
	for i, span := range w.Spans {
		result.Buckets[i] = domain.BucketStats{BucketStart: span.Start, BucketEnd: span.End}
	}

	accs := make([]statsAcc, len(w.Spans))
	var rangeAcc statsAcc

	for _, rec := range records {
		i := w.IndexOf(rec.Timestamp)
		if i < 0 {
			continue
		}
		accs[i].add(rec.Value)
		// 范围级汇总对完整集合独立计算，避免组合均值的二次舍入偏差
		rangeAcc.add(rec.Value)
	}

	for i := range accs {
		accs[i].fill(&result.Buckets[i])
	}
	result.Range = domain.BucketStats{BucketStart: w.RangeStart, BucketEnd: w.RangeEnd}
	rangeAcc.fill(&result.Range)

	return result
}

// statsAcc 单桶统计累加器
type statsAcc struct {
	count     int
	malformed int
	min       float64
	max       float64
	sum       float64
	last      float64
}

func (a *statsAcc) add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		a.malformed++
		return
	}
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.last = v // 输入已按 (timestamp, 插入顺序) 排序，末次写入即时序最后一条
	a.count++
}

func (a *statsAcc) fill(b *domain.BucketStats) {
	b.Count = a.count
	b.MalformedCount = a.malformed
	if a.count == 0 {
		return
	}
	mn, mx, last := a.min, a.max, a.last
	mean := a.sum / float64(a.count)
	b.Min = &mn
	b.Max = &mx
	b.Mean = &mean
	b.Last = &last
}
