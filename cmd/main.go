// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"geoip-api/internal/api"
	"geoip-api/internal/geodb"
	"geoip-api/internal/logger"
	"geoip-api/internal/metrics"
	"geoip-api/internal/middleware"
	"geoip-api/internal/migrate"
	"geoip-api/internal/store"
	"geoip-api/internal/updater"
	"geoip-api/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	l.Debug("log_init_ok")

	// 地理库是查询主依赖，打不开就没有可提供的服务；
	// 路径优先取环境变量，其次取首个命令行参数
	dbPath := os.Getenv("GEOIP_DB_PATH")
	if dbPath == "" && len(os.Args) > 1 {
		dbPath = os.Args[1]
	}
	if dbPath == "" {
		l.Error("config_missing", "key", "GEOIP_DB_PATH")
		os.Exit(1)
	}
	db, err := geodb.Open(dbPath)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	dyn := geodb.NewDynamic(db)
	md := db.Metadata()
	metrics.DBBuildEpoch.WithLabelValues(md.DatabaseType).Set(float64(md.BuildEpoch))
	l.Info("db_open_ok", "path", dbPath, "database", md.DatabaseType, "build_epoch", md.BuildEpoch)

	// 统计库与缓存均为可选能力，未配置时以 nil 注入并降级
	var st *store.Store
	pg, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("pg_open_error", "err", err)
		os.Exit(1)
	}
	if pg == nil {
		l.Info("stats_disabled")
	} else {
		defer pg.Close()
		if err := pg.Ping(); err != nil {
			l.Error("pg_ping_error", "err", err)
		} else {
			l.Info("pg_ping_ok")
		}
		if err := migrate.EnsureSchema(pg); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(pg)
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	cacheTTL := 24 * time.Hour
	if v := os.Getenv("CACHE_TTL_HOURS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil && n > 0 {
			cacheTTL = time.Duration(n) * time.Hour
		}
	}

	upd := updater.New(dyn, dbPath, os.Getenv("GEOIP_LICENSE"), updater.EditionsFromEnv())
	upd.Start()

	mux := http.NewServeMux()
	mux.Handle("/", api.BuildRoutes(dyn, st, rc, cacheTTL))
	mux.Handle("/metrics", metrics.Handler())

	host := os.Getenv("HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := host + ":" + port

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler}
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}
