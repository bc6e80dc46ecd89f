// 包 store: 提供与 PostgreSQL 的数据访问层，负责查询统计的读写
package store

import (
	"context"
	"database/sql"

	"geoip-api/internal/logger"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池并提供统计接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// IncrQuery: 递增累计与当日查询计数
// 约束：统计写入尽力而为，失败不向上传播，不影响查询主流程
func (s *Store) IncrQuery(ctx context.Context) error {
	_, _ = s.db.ExecContext(ctx, "UPDATE _geo_stats_total SET total_queries=total_queries+1 WHERE id=1")
	_, _ = s.db.ExecContext(ctx, "INSERT INTO _geo_stats_daily(day, queries) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET queries=_geo_stats_daily.queries+1")
	return nil
}

// IncrVisitor: 递增独立访客计数，调用方先经布隆去重判定首次出现
func (s *Store) IncrVisitor(ctx context.Context) error {
	_, _ = s.db.ExecContext(ctx, "UPDATE _geo_stats_total SET total_visitors=total_visitors+1 WHERE id=1")
	_, _ = s.db.ExecContext(ctx, "INSERT INTO _geo_stats_daily(day, visitors) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET visitors=_geo_stats_daily.visitors+1")
	return nil
}

// Totals: 统计返回结构，包含累计查询、当日查询与累计访客
type Totals struct {
	Total    int64
	Today    int64
	Visitors int64
}

// GetTotals: 读取统计计数，用于接口返回
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	row := s.db.QueryRowContext(ctx, "SELECT total_queries, total_visitors FROM _geo_stats_total WHERE id=1")
	_ = row.Scan(&t.Total, &t.Visitors)
	row2 := s.db.QueryRowContext(ctx, "SELECT queries FROM _geo_stats_daily WHERE day=current_date")
	_ = row2.Scan(&t.Today)
	logger.L().Debug("stats_totals", "total", t.Total, "today", t.Today, "visitors", t.Visitors)
	return &t, nil
}

// 文档注释：记录最近查询的 IP（去重累加）
// 背景：保留最近被查询的 IP 及次数与时间，供运营侧观察热点；不影响主查询逻辑。
// 约束：IPv4/IPv6 文本均可；重复出现仅更新 last_seen 与计数。
func (s *Store) RecordRecent(ctx context.Context, ip string) error {
	_, _ = s.db.ExecContext(ctx, `INSERT INTO _geo_recent_ips(ip, last_seen, queries)
        VALUES($1, now(), 1)
        ON CONFLICT (ip) DO UPDATE SET last_seen=now(), queries=_geo_recent_ips.queries+1`, ip)
	return nil
}
