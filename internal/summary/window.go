package summary

import (
	"fmt"
	"sort"
	"time"

	"healthband-insight/internal/domain"
)

// 粒度选择阈值（按查询跨度）
const (
	hourlySpanMax = 7 * 24 * time.Hour  // ≤ 7 天 → 小时桶
	dailySpanMax  = 60 * 24 * time.Hour // ≤ 60 天 → 日桶，再大 → 月桶
)

// GranularityFor 按查询跨度选择分桶粒度
// 对应系统假设的三种采样节奏：近期/中期/历史
func GranularityFor(start, end time.Time) domain.Granularity {
	span := end.Sub(start)
	switch {
	case span <= hourlySpanMax:
		return domain.GranularityHour
	case span <= dailySpanMax:
		return domain.GranularityDay
	default:
		return domain.GranularityMonth
	}
}

// Span 单个桶的时间区间 [Start, End)
type Span struct {
	Start time.Time
	End   time.Time
}

// Window 覆盖完整查询范围的连续桶序列
// 桶边界对齐到粒度单位（整点/UTC 零点/月初），与查询起点无关，
// 因此重叠范围的重复查询产生相同的桶边界
type Window struct {
	Granularity domain.Granularity
	RangeStart  time.Time
	RangeEnd    time.Time
	Spans       []Span
}

// ComputeWindow 构建窗口：校验范围、选择粒度、铺满 [对齐起点, end)
// 数据缺失不影响桶序列——空桶照常产出
func ComputeWindow(start, end time.Time) (*Window, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start=%s end=%s",
			domain.ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	start = start.UTC()
	end = end.UTC()
	g := GranularityFor(start, end)

	w := &Window{
		Granularity: g,
		RangeStart:  start,
		RangeEnd:    end,
	}

	cursor := alignDown(start, g)
	for cursor.Before(end) {
		next := nextBoundary(cursor, g)
		w.Spans = append(w.Spans, Span{Start: cursor, End: next})
		cursor = next
	}
	// 退化情况：start == end，仍然产出覆盖该时刻的单个桶
	if len(w.Spans) == 0 {
		w.Spans = append(w.Spans, Span{Start: cursor, End: nextBoundary(cursor, g)})
	}

	return w, nil
}

// IndexOf 返回时间戳所属桶的下标；不在窗口内返回 -1
// 范围终点恰好落在最后一个桶边界上时归入最后一个桶（inclusive fetch 不丢数据）
func (w *Window) IndexOf(ts time.Time) int {
	n := len(w.Spans)
	i := sort.Search(n, func(i int) bool { return w.Spans[i].End.After(ts) })
	if i < n && !ts.Before(w.Spans[i].Start) {
		return i
	}
	if ts.Equal(w.Spans[n-1].End) && !ts.After(w.RangeEnd) {
		return n - 1
	}
	return -1
}

// SortRecords 按 (timestamp, created_at, id) 稳定排序
// 生成器/批量导入不保证写入顺序，排序由窗口引擎负责
func SortRecords(records []domain.MetricRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// alignDown 将时间对齐到粒度单位的起点（UTC）
func alignDown(t time.Time, g domain.Granularity) time.Time {
	t = t.UTC()
	switch g {
	case domain.GranularityHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case domain.GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// nextBoundary 下一个粒度边界
func nextBoundary(t time.Time, g domain.Granularity) time.Time {
	switch g {
	case domain.GranularityHour:
		return t.Add(time.Hour)
	case domain.GranularityDay:
		return t.AddDate(0, 0, 1)
	default:
		return t.AddDate(0, 1, 0)
	}
}
