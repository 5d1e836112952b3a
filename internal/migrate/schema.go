package migrate

import (
	"database/sql"

	"saha-map/internal/logger"
)

// 背景：首次运行自动创建统计表
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _map_selections (
            kind TEXT NOT NULL,
            region_key TEXT NOT NULL,
            name TEXT NOT NULL,
            code TEXT NOT NULL DEFAULT '',
            selections BIGINT NOT NULL DEFAULT 0,
            last_selected TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (kind, region_key)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_map_selections_count ON _map_selections(selections DESC)`,
		`CREATE TABLE IF NOT EXISTS _map_stats_total (
            id INT PRIMARY KEY,
            total_selections BIGINT NOT NULL DEFAULT 0,
            total_sessions BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS _map_stats_daily (
            day DATE PRIMARY KEY,
            selections BIGINT NOT NULL DEFAULT 0,
            sessions BIGINT NOT NULL DEFAULT 0
        )`,
		`INSERT INTO _map_stats_total(id, total_selections, total_sessions)
         VALUES(1, 0, 0)
         ON CONFLICT (id) DO NOTHING`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
