package service

import (
	"context"
	"fmt"
	"time"

	"healthband-insight/internal/domain"
	"healthband-insight/internal/export"
	"healthband-insight/internal/repository"
	"healthband-insight/internal/summary"

	"go.uber.org/zap"
)

// SummaryService 指标汇总服务接口
type SummaryService interface {
	// GetMetricsSummary 返回分桶统计汇总（类型缺省时按全部类型分别计算）
	GetMetricsSummary(ctx context.Context, req GetMetricsSummaryRequest) (*GetMetricsSummaryResponse, error)

	// ExportMetricsSummary 导出汇总为 Excel 工作簿（主管侧报表）
	ExportMetricsSummary(ctx context.Context, req GetMetricsSummaryRequest) ([]byte, error)
}

// GetMetricsSummaryRequest 汇总请求
type GetMetricsSummaryRequest struct {
	UserID     string             // 必填（鉴权由外部协作方完成，本层单租户）
	MetricType *domain.MetricType // 可选，nil 表示全部类型
	StartDate  time.Time          // 范围起点（含）
	EndDate    time.Time          // 范围终点
}

// GetMetricsSummaryResponse 汇总响应
type GetMetricsSummaryResponse struct {
	UserID      string                                       `json:"user_id"`
	StartDate   time.Time                                    `json:"start_date"`
	EndDate     time.Time                                    `json:"end_date"`
	Granularity domain.Granularity                           `json:"granularity"`
	Summaries   map[domain.MetricType]*domain.SummaryResult  `json:"summaries"`
}

// summaryService 实现
type summaryService struct {
	metricsRepo repository.MetricsRepository
	logger      *zap.Logger
}

// NewSummaryService 创建汇总服务
func NewSummaryService(metricsRepo repository.MetricsRepository, logger *zap.Logger) SummaryService {
	return &summaryService{
		metricsRepo: metricsRepo,
		logger:      logger,
	}
}

// GetMetricsSummary 实现 SummaryService
// 相同入参和相同底层数据下结果逐字节一致（幂等）；存储故障原样上抛
func (s *summaryService) GetMetricsSummary(ctx context.Context, req GetMetricsSummaryRequest) (*GetMetricsSummaryResponse, error) {
	// 结构性校验在任何存储访问之前完成（范围非法直接失败）
	window, err := summary.ComputeWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	start, end := window.RangeStart, window.RangeEnd
	records, err := s.metricsRepo.FetchMetrics(ctx, req.UserID, req.MetricType, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics for summary: %w", err)
	}

	byType := make(map[domain.MetricType][]domain.MetricRecord)
	for _, rec := range records {
		byType[rec.MetricType] = append(byType[rec.MetricType], rec)
	}

	types := domain.AllMetricTypes
	if req.MetricType != nil {
		types = []domain.MetricType{*req.MetricType}
	}

	summaries := make(map[domain.MetricType]*domain.SummaryResult, len(types))
	for _, metricType := range types {
		// 每个类型独立计算；无记录的类型照常产出全空桶序列
		summaries[metricType] = summary.Aggregate(metricType, byType[metricType], window)
	}

	s.logger.Debug("Metrics summary computed",
		zap.String("user_id", req.UserID),
		zap.String("granularity", string(window.Granularity)),
		zap.Int("buckets", len(window.Spans)),
		zap.Int("records", len(records)),
	)

	return &GetMetricsSummaryResponse{
		UserID:      req.UserID,
		StartDate:   start,
		EndDate:     end,
		Granularity: window.Granularity,
		Summaries:   summaries,
	}, nil
}

// ExportMetricsSummary 实现 SummaryService
func (s *summaryService) ExportMetricsSummary(ctx context.Context, req GetMetricsSummaryRequest) ([]byte, error) {
	resp, err := s.GetMetricsSummary(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := export.BuildSummaryWorkbook(resp.UserID, resp.Summaries)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary workbook: %w", err)
	}
	return data, nil
}
