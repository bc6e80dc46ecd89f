package updater

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"geoip-api/internal/logger"
)

// EditionsFromEnv：解析 GEOIP_EDITIONS 的逗号分隔列表。
// 约束：未配置时返回 nil，交由 New 取缺省版本。
func EditionsFromEnv() []string {
	raw := os.Getenv("GEOIP_EDITIONS")
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Start：按固定间隔在后台协程执行刷新。
// 背景：上游每天更新库文件；首次刷新发生在一个完整间隔之后，
// 启动时的库由部署方预置或由一次性命令拉取。
// 约束：GEOIP_UPDATE_INTERVAL_HOURS 覆盖间隔（整数小时，缺省 24）；
// 错误只记录日志，调度继续。
func (u *Updater) Start() {
	l := logger.L()
	if u.License == "" {
		l.Info("update_disabled_no_license")
		return
	}
	hours := 24
	if h := os.Getenv("GEOIP_UPDATE_INTERVAL_HOURS"); h != "" {
		if n, err := strconv.Atoi(h); err == nil && n > 0 {
			hours = n
		}
	}
	interval := time.Duration(hours) * time.Hour
	l.Info("update_schedule", "interval", interval)
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for range t.C {
			if err := u.RunOnce(context.Background()); err != nil {
				l.Error("update_error", "err", err)
			}
		}
	}()
}
