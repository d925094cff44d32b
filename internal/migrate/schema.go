package migrate

import (
	"database/sql"

	"floorplan-api/internal/logger"
)

// 背景：选用 PostgreSQL 后端时首次运行自动建表，保障后续 upsert 与查询
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _floor_layouts (
            bid TEXT PRIMARY KEY,
            record JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_floor_layouts_updated ON _floor_layouts(updated_at)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
