package ingest

import (
	"context"
	"time"

	"saha-map/internal/logger"
)

// nextDailyAt：下一次 loc 时区 hour 整点（严格晚于 now）
func nextDailyAt(now time.Time, loc *time.Location, hour int) time.Time {
	n := now.In(loc)
	t := time.Date(n.Year(), n.Month(), n.Day(), hour, 0, 0, 0, loc)
	if !t.After(n) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// StartPeriodic：按固定间隔刷新会员数据，ctx 取消即退出
// 约束：错误由日志记录，任务继续调度；interval<=0 时不启动。
func (l *Loader) StartPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				l.runOnce(ctx)
			}
		}
	}()
}

// StartDailyIstanbul：每天伊斯坦布尔时间 hour 点刷新一次
func (l *Loader) StartDailyIstanbul(ctx context.Context, hour int) {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		loc = time.FixedZone("TRT", 3*60*60)
	}
	go func() {
		for {
			next := nextDailyAt(time.Now(), loc, hour)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Until(next)):
				l.runOnce(ctx)
			}
		}
	}()
}

func (l *Loader) runOnce(ctx context.Context) {
	lg := logger.L()
	lg.Info("feed_refresh_start")
	if err := l.Refresh(ctx); err != nil {
		lg.Error("feed_refresh_error", "err", err)
		return
	}
	lg.Info("feed_refresh_done")
}
