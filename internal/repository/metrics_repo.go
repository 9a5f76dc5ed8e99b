package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"healthband-insight/internal/domain"

	"go.uber.org/zap"
)

// MetricsRepository 指标记录存取接口（引擎的只读视图 + 生成器的写入端）
type MetricsRepository interface {
	// FetchMetrics 读取某用户的记录，类型/时间过滤可选（nil 表示不过滤）
	// 结果按 (timestamp, created_at, id) 升序；软删除记录被排除
	FetchMetrics(ctx context.Context, userID string, metricType *domain.MetricType, start, end *time.Time) ([]domain.MetricRecord, error)

	// InsertMetricsBatch 批量写入记录（合成生成器使用）
	InsertMetricsBatch(ctx context.Context, records []domain.MetricRecord) error
}

// PostgresMetricsRepo PostgreSQL 实现（metrics 表）
type PostgresMetricsRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresMetricsRepo 创建指标仓库
func NewPostgresMetricsRepo(db *sql.DB, logger *zap.Logger) *PostgresMetricsRepo {
	return &PostgresMetricsRepo{
		db:     db,
		logger: logger,
	}
}

// FetchMetrics 实现 MetricsRepository
func (r *PostgresMetricsRepo) FetchMetrics(ctx context.Context, userID string, metricType *domain.MetricType, start, end *time.Time) ([]domain.MetricRecord, error) {
	query := `
		SELECT id, metric_type, value, unit, sensor_model, timestamp, user_id, created_at
		FROM metrics
		WHERE user_id = $1 AND deleted_at IS NULL`
	args := []interface{}{userID}

	if metricType != nil {
		args = append(args, metricType.StorageValue())
		query += " AND metric_type = $" + strconv.Itoa(len(args))
	}
	if start != nil {
		args = append(args, start.UTC())
		query += " AND timestamp >= $" + strconv.Itoa(len(args))
	}
	if end != nil {
		args = append(args, end.UTC())
		query += " AND timestamp <= $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY timestamp ASC, created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var records []domain.MetricRecord
	for rows.Next() {
		var (
			rec         domain.MetricRecord
			rawType     string
			value       sql.NullFloat64
			unit        sql.NullString
			sensorModel sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rawType, &value, &unit, &sensorModel, &rec.Timestamp, &rec.UserID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}

		// 自由文本 → 枚举的翻译发生在存储接入层，隔离 schema 漂移
		parsedType, err := domain.ParseMetricType(rawType)
		if err != nil {
			r.logger.Warn("Skipping metric row with unknown type",
				zap.String("metric_id", rec.ID),
				zap.String("metric_type", rawType),
			)
			continue
		}
		rec.MetricType = parsedType

		// NULL 数值按非有限值处理，由聚合层计入 malformed，不在此处丢行
		if value.Valid {
			rec.Value = value.Float64
		} else {
			rec.Value = math.NaN()
		}
		rec.Unit = unit.String
		rec.SensorModel = sensorModel.String

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metric rows: %w", err)
	}

	return records, nil
}

// InsertMetricsBatch 实现 MetricsRepository
// 单事务 + 预编译语句逐行写入；任意一行失败整批回滚
func (r *PostgresMetricsRepo) InsertMetricsBatch(ctx context.Context, records []domain.MetricRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metrics (id, metric_type, value, unit, sensor_model, timestamp, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.MetricType.StorageValue(),
			rec.Value,
			rec.Unit,
			rec.SensorModel,
			rec.Timestamp.UTC(),
			rec.UserID,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert metric %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metrics batch: %w", err)
	}
	return nil
}
