// 包 store: 提供与 PostgreSQL 的数据访问层，记录地图选择统计
package store

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"saha-map/internal/logger"
	"saha-map/internal/regionindex"
)

// Store: 数据库访问入口，持有连接池并提供统计读写
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// RecordSelection: 地区被选中一次；同时递增总计与当日计数
func (s *Store) RecordSelection(ctx context.Context, r regionindex.Region) error {
	if r.Key == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `INSERT INTO _map_selections(kind, region_key, name, code, selections, last_selected)
        VALUES($1,$2,$3,$4,1,now())
        ON CONFLICT (kind, region_key) DO UPDATE SET selections=_map_selections.selections+1, name=EXCLUDED.name, last_selected=now()`,
		r.Kind.String(), r.Key, r.Name, r.Code); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE _map_stats_total SET total_selections=total_selections+1 WHERE id=1"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO _map_stats_daily(day, selections) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET selections=_map_stats_daily.selections+1"); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Debug("stats_selection", "kind", r.Kind.String(), "region", r.Key)
	return nil
}

// IncrSessions: 新会话计数，失败静默
func (s *Store) IncrSessions(ctx context.Context) error {
	_, _ = s.db.ExecContext(ctx, "UPDATE _map_stats_total SET total_sessions=total_sessions+1 WHERE id=1")
	_, _ = s.db.ExecContext(ctx, "INSERT INTO _map_stats_daily(day, sessions) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET sessions=_map_stats_daily.sessions+1")
	return nil
}

// Totals: 统计返回结构
type Totals struct {
	Selections      int64 `json:"selections"`
	SelectionsToday int64 `json:"selections_today"`
	Sessions        int64 `json:"sessions"`
	SessionsToday   int64 `json:"sessions_today"`
}

// GetTotals: 读取累计与当日计数；缺行时为 0
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	row := s.db.QueryRowContext(ctx, "SELECT total_selections, total_sessions FROM _map_stats_total WHERE id=1")
	_ = row.Scan(&t.Selections, &t.Sessions)
	row2 := s.db.QueryRowContext(ctx, "SELECT selections, sessions FROM _map_stats_daily WHERE day=current_date")
	_ = row2.Scan(&t.SelectionsToday, &t.SessionsToday)
	logger.L().Debug("stats_totals", "selections", t.Selections, "today", t.SelectionsToday)
	return &t, nil
}

// RegionStat: 单个地区的选择次数
type RegionStat struct {
	Kind       string `json:"kind"`
	Key        string `json:"key"`
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	Selections int64  `json:"selections"`
}

// TopRegions: 选择次数最多的地区；kind 为空时不区分层级
func (s *Store) TopRegions(ctx context.Context, kind string, limit int) ([]RegionStat, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `SELECT kind, region_key, name, code, selections
        FROM _map_selections
        WHERE ($1 = '' OR kind = $1)
        ORDER BY selections DESC, region_key ASC
        LIMIT $2`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RegionStat{}
	for rows.Next() {
		var r RegionStat
		if err := rows.Scan(&r.Kind, &r.Key, &r.Name, &r.Code, &r.Selections); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
