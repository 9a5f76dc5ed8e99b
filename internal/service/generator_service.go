package service

import (
	"context"

	"healthband-insight/internal/generator"

	"go.uber.org/zap"
)

// GeneratorService 合成历史数据服务接口
type GeneratorService interface {
	// GenerateSyntheticHistory 为用户生成合成历史，返回写入记录数
	GenerateSyntheticHistory(ctx context.Context, req GenerateSyntheticHistoryRequest) (*GenerateSyntheticHistoryResponse, error)
}

// GenerateSyntheticHistoryRequest 生成请求
type GenerateSyntheticHistoryRequest struct {
	UserID     string
	MonthsBack int   // 历史深度（月），最小 1
	Seed       int64 // 随机种子（0 也是合法种子）
}

// GenerateSyntheticHistoryResponse 生成响应
type GenerateSyntheticHistoryResponse struct {
	RecordsWritten int `json:"records_written"`
}

// generatorService 实现
type generatorService struct {
	gen    *generator.Generator
	logger *zap.Logger
}

// NewGeneratorService 创建生成服务
func NewGeneratorService(gen *generator.Generator, logger *zap.Logger) GeneratorService {
	return &generatorService{
		gen:    gen,
		logger: logger,
	}
}

// GenerateSyntheticHistory 实现 GeneratorService
func (s *generatorService) GenerateSyntheticHistory(ctx context.Context, req GenerateSyntheticHistoryRequest) (*GenerateSyntheticHistoryResponse, error) {
	count, err := s.gen.GenerateHistory(ctx, req.UserID, req.MonthsBack, req.Seed)
	if err != nil {
		return nil, err
	}
	return &GenerateSyntheticHistoryResponse{RecordsWritten: count}, nil
}
