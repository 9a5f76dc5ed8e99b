package service

import (
	"context"
	"time"

	"healthband-insight/internal/repository"

	"go.uber.org/zap"
)

// Monitor 周期性风险评估循环
// 遍历活跃用户逐个评估并发布，供下游展示/推送协作方消费；
// 单个用户失败不中断整轮
type Monitor struct {
	usersRepo repository.UsersRepository
	health    HealthPredictionService
	interval  time.Duration
	logger    *zap.Logger
}

// NewMonitor 创建评估循环
func NewMonitor(usersRepo repository.UsersRepository, health HealthPredictionService, interval time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		usersRepo: usersRepo,
		health:    health,
		interval:  interval,
		logger:    logger,
	}
}

// Start 启动循环（阻塞直到 ctx 取消）
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("Starting health monitor",
		zap.Duration("interval", m.interval),
	)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// 启动即跑一轮，不等第一个周期
	m.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Health monitor stopped")
			return nil
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

// runOnce 单轮评估
func (m *Monitor) runOnce(ctx context.Context) {
	userIDs, err := m.usersRepo.ListActiveUserIDs(ctx)
	if err != nil {
		m.logger.Error("Failed to list active users", zap.Error(err))
		return
	}

	evaluated := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		if _, err := m.health.PredictHealth(ctx, PredictHealthRequest{UserID: userID}); err != nil {
			m.logger.Error("Failed to evaluate user risk",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		evaluated++
	}

	m.logger.Info("Monitor round completed",
		zap.Int("users", len(userIDs)),
		zap.Int("evaluated", evaluated),
	)
}
