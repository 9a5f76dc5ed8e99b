package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"healthband-insight/internal/domain"
	"healthband-insight/internal/predictor"
	"healthband-insight/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var predictAsOf = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func healthReading(metricType domain.MetricType, v float64, age time.Duration) domain.MetricRecord {
	ts := predictAsOf.Add(-age)
	return domain.MetricRecord{
		MetricType: metricType,
		Value:      v,
		Timestamp:  ts,
		UserID:     "user-1",
		CreatedAt:  ts,
	}
}

func newTestKV(t *testing.T) (store.KV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisKV(client), mr
}

func TestPredictHealth_PublishesAssessmentToRedis(t *testing.T) {
	repo := &fakeMetricsRepo{records: []domain.MetricRecord{
		healthReading(domain.MetricSpO2, 89, time.Hour),
	}}
	kv, mr := newTestKV(t)
	svc := NewHealthPredictionService(repo, predictor.New(zap.NewNop()), kv, 15*time.Minute, zap.NewNop())

	resp, err := svc.PredictHealth(context.Background(), PredictHealthRequest{UserID: "user-1", AsOf: predictAsOf})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskAlert, resp.Assessment.Overall)

	// 最新评估 write-through 到 Redis，键按用户编排
	raw, err := mr.Get(store.RiskKey("user-1"))
	require.NoError(t, err)

	var published domain.RiskAssessment
	require.NoError(t, json.Unmarshal([]byte(raw), &published))
	assert.Equal(t, "user-1", published.UserID)
	assert.Equal(t, domain.RiskAlert, published.Overall)
	assert.True(t, mr.TTL(store.RiskKey("user-1")) > 0)
}

func TestPredictHealth_NilKVSkipsPublication(t *testing.T) {
	repo := &fakeMetricsRepo{records: []domain.MetricRecord{
		healthReading(domain.MetricHeartRate, 72, time.Hour),
	}}
	svc := NewHealthPredictionService(repo, predictor.New(zap.NewNop()), nil, 0, zap.NewNop())

	resp, err := svc.PredictHealth(context.Background(), PredictHealthRequest{UserID: "user-1", AsOf: predictAsOf})
	require.NoError(t, err)
	require.NotNil(t, resp.Assessment.RiskFor(domain.MetricHeartRate))
	assert.Equal(t, domain.RiskNormal, resp.Assessment.RiskFor(domain.MetricHeartRate).Level)
}

func TestPredictHealth_PublishFailureDoesNotFailPrediction(t *testing.T) {
	repo := &fakeMetricsRepo{records: []domain.MetricRecord{
		healthReading(domain.MetricHeartRate, 72, time.Hour),
	}}
	kv, mr := newTestKV(t)
	mr.Close() // 发布端不可用

	svc := NewHealthPredictionService(repo, predictor.New(zap.NewNop()), kv, 15*time.Minute, zap.NewNop())

	resp, err := svc.PredictHealth(context.Background(), PredictHealthRequest{UserID: "user-1", AsOf: predictAsOf})
	require.NoError(t, err)
	require.NotNil(t, resp.Assessment)
}

func TestPredictHealth_StoreFailurePropagates(t *testing.T) {
	repo := &fakeMetricsRepo{fetchErr: errors.New("connection refused")}
	svc := NewHealthPredictionService(repo, predictor.New(zap.NewNop()), nil, 0, zap.NewNop())

	_, err := svc.PredictHealth(context.Background(), PredictHealthRequest{UserID: "user-1", AsOf: predictAsOf})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch metrics")
}

func TestPredictHealth_ZeroAsOfUsesNow(t *testing.T) {
	repo := &fakeMetricsRepo{}
	svc := NewHealthPredictionService(repo, predictor.New(zap.NewNop()), nil, 0, zap.NewNop())

	resp, err := svc.PredictHealth(context.Background(), PredictHealthRequest{UserID: "user-1"})
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().UTC(), resp.Assessment.EvaluatedAt, 5*time.Second)
	require.NotNil(t, repo.lastEnd)
	assert.Nil(t, repo.lastStart)
}
