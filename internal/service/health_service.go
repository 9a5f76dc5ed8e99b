package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"healthband-insight/internal/domain"
	"healthband-insight/internal/predictor"
	"healthband-insight/internal/repository"
	"healthband-insight/internal/store"

	"go.uber.org/zap"
)

// HealthPredictionService 健康风险预测服务接口
type HealthPredictionService interface {
	// PredictHealth 基于最近读数评估当前健康风险
	PredictHealth(ctx context.Context, req PredictHealthRequest) (*PredictHealthResponse, error)
}

// PredictHealthRequest 预测请求
type PredictHealthRequest struct {
	UserID string    // 必填
	AsOf   time.Time // 评估时点，零值表示当前时刻
}

// PredictHealthResponse 预测响应
type PredictHealthResponse struct {
	Assessment *domain.RiskAssessment `json:"assessment"`
}

// healthPredictionService 实现
type healthPredictionService struct {
	metricsRepo repository.MetricsRepository
	predictor   *predictor.Predictor
	kv          store.KV // 可为 nil（不发布）
	riskTTL     time.Duration
	logger      *zap.Logger
}

// NewHealthPredictionService 创建预测服务
// kv 非 nil 时，每次评估结果 write-through 到 Redis 供下游推送协作方消费；
// 读路径永远重算，发布失败只降级为告警日志
func NewHealthPredictionService(
	metricsRepo repository.MetricsRepository,
	pred *predictor.Predictor,
	kv store.KV,
	riskTTL time.Duration,
	logger *zap.Logger,
) HealthPredictionService {
	return &healthPredictionService{
		metricsRepo: metricsRepo,
		predictor:   pred,
		kv:          kv,
		riskTTL:     riskTTL,
		logger:      logger,
	}
}

// PredictHealth 实现 HealthPredictionService
// 评估无跨调用状态：回看窗口每次从存储重读，存储故障原样上抛
func (s *healthPredictionService) PredictHealth(ctx context.Context, req PredictHealthRequest) (*PredictHealthResponse, error) {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	// 不设起点：24 小时窗口为空时评估器需要回退到最近 N 条读数
	records, err := s.metricsRepo.FetchMetrics(ctx, req.UserID, nil, nil, &asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics for prediction: %w", err)
	}

	assessment := s.predictor.Evaluate(req.UserID, asOf, records)

	s.logger.Info("Health risk evaluated",
		zap.String("user_id", req.UserID),
		zap.String("overall", string(assessment.Overall)),
		zap.Int("records", len(records)),
	)

	s.publish(ctx, assessment)

	return &PredictHealthResponse{Assessment: assessment}, nil
}

// publish 发布最新评估到 Redis（尽力而为）
func (s *healthPredictionService) publish(ctx context.Context, assessment *domain.RiskAssessment) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(assessment)
	if err != nil {
		s.logger.Warn("Failed to marshal risk assessment",
			zap.String("user_id", assessment.UserID),
			zap.Error(err),
		)
		return
	}
	if err := s.kv.Set(ctx, store.RiskKey(assessment.UserID), string(data), s.riskTTL); err != nil {
		s.logger.Warn("Failed to publish risk assessment",
			zap.String("user_id", assessment.UserID),
			zap.Error(err),
		)
	}
}
