package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// UsersRepository 用户仓库（本模块只需要活跃用户枚举，账号生命周期归外部协作方）
type UsersRepository interface {
	// ListActiveUserIDs 列出未软删除的用户 ID（供周期性评估循环遍历）
	ListActiveUserIDs(ctx context.Context) ([]string, error)
}

// PostgresUsersRepo PostgreSQL 实现（users 表只读）
type PostgresUsersRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresUsersRepo 创建用户仓库
func NewPostgresUsersRepo(db *sql.DB, logger *zap.Logger) *PostgresUsersRepo {
	return &PostgresUsersRepo{
		db:     db,
		logger: logger,
	}
}

// ListActiveUserIDs 实现 UsersRepository
func (r *PostgresUsersRepo) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return ids, nil
}
