package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"healthband-insight/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var metricColumns = []string{"id", "metric_type", "value", "unit", "sensor_model", "timestamp", "user_id", "created_at"}

func TestFetchMetrics_TranslatesTypesAtTheSeam(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresMetricsRepo(db, zap.NewNop())

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(metricColumns).
		AddRow("m1", "heart_rate", 72.0, "bpm", "HR-Monitor-1", ts, "user-1", ts).
		AddRow("m2", "blood_sugar", 5.5, "mmol/L", "Glu-1", ts.Add(time.Minute), "user-1", ts). // 未知类型，跳过
		AddRow("m3", "spo2", nil, "%", "PulseOx-100", ts.Add(2*time.Minute), "user-1", ts)      // NULL 数值 → NaN

	mock.ExpectQuery(`SELECT id, metric_type`).
		WithArgs("user-1").
		WillReturnRows(rows)

	records, err := repo.FetchMetrics(context.Background(), "user-1", nil, nil, nil)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, domain.MetricHeartRate, records[0].MetricType)
	assert.Equal(t, 72.0, records[0].Value)
	assert.Equal(t, domain.MetricSpO2, records[1].MetricType)
	assert.True(t, math.IsNaN(records[1].Value))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchMetrics_AppliesTypeAndTimeFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresMetricsRepo(db, zap.NewNop())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	metricType := domain.MetricHeartRate

	mock.ExpectQuery(`SELECT id, metric_type.+AND metric_type = \$2 AND timestamp >= \$3 AND timestamp <= \$4 ORDER BY timestamp ASC, created_at ASC, id ASC`).
		WithArgs("user-1", "heart_rate", start, end).
		WillReturnRows(sqlmock.NewRows(metricColumns))

	records, err := repo.FetchMetrics(context.Background(), "user-1", &metricType, &start, &end)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchMetrics_QueryErrorPropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresMetricsRepo(db, zap.NewNop())

	mock.ExpectQuery(`SELECT id, metric_type`).
		WithArgs("user-1").
		WillReturnError(assert.AnError)

	_, err = repo.FetchMetrics(context.Background(), "user-1", nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestInsertMetricsBatch_SingleTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresMetricsRepo(db, zap.NewNop())

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	records := []domain.MetricRecord{
		{ID: "m1", MetricType: domain.MetricSpO2, Value: 98, Unit: "%", SensorModel: "PulseOx-100", Timestamp: ts, UserID: "user-1"},
		{ID: "m2", MetricType: domain.MetricSteps, Value: 1200, Unit: "steps", SensorModel: "StepCounter-1", Timestamp: ts.Add(time.Hour), UserID: "user-1"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO metrics`)
	prep.ExpectExec().
		WithArgs("m1", "spo2", 98.0, "%", "PulseOx-100", ts, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("m2", "steps", 1200.0, "steps", "StepCounter-1", ts.Add(time.Hour), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.InsertMetricsBatch(context.Background(), records))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMetricsBatch_RollbackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresMetricsRepo(db, zap.NewNop())

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	records := []domain.MetricRecord{
		{ID: "m1", MetricType: domain.MetricSpO2, Value: 98, Unit: "%", SensorModel: "PulseOx-100", Timestamp: ts, UserID: "user-1"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO metrics`)
	prep.ExpectExec().
		WithArgs("m1", "spo2", 98.0, "%", "PulseOx-100", ts, "user-1").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = repo.InsertMetricsBatch(context.Background(), records)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMetricsBatch_EmptyBatchIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresMetricsRepo(db, zap.NewNop())
	require.NoError(t, repo.InsertMetricsBatch(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
