// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"geoip-api/internal/geodb"
	"geoip-api/internal/logger"
	"geoip-api/internal/metrics"
	"geoip-api/internal/store"

	"github.com/redis/go-redis/v9"
)

// BuildRoutes：构建并返回 API 路由。
// 背景：st 与 rc 均可为 nil，表示对应能力未配置；
// 查询主流程只依赖 db，统计与缓存都是尽力而为。
func BuildRoutes(db *geodb.Dynamic, st *store.Store, rc *redis.Client, cacheTTL time.Duration) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ctx := r.Context()
		q := r.URL.Query()
		lang := q.Get("lang")
		if lang == "" {
			lang = "en"
		}
		callback := q.Get("callback")

		ip := resolveIP(r)
		if ip == nil {
			writeError(w, http.StatusBadRequest, "cannot resolve source ip")
			return
		}
		ipText := ip.String()

		// 统计与访客去重不阻塞查询主流程
		if st != nil {
			_ = st.IncrQuery(ctx)
			_ = st.RecordRecent(ctx, ipText)
			if firstSeenToday(ctx, rc, visitorIP(r)) {
				_ = st.IncrVisitor(ctx)
			}
		}

		if rc != nil {
			if s, _ := rc.Get(ctx, "geo:"+ipText+":"+lang).Result(); s != "" {
				metrics.CacheHits.Inc()
				writeGeoRaw(w, []byte(s), callback)
				return
			}
		}

		start := time.Now()
		rec, ok, err := db.Lookup(ip)
		metrics.LookupDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			// 查询出错按无记录处理，接口仍返回 200
			logger.L().Error("lookup_error", "ip", ipText, "err", err)
			ok = false
		}
		if !ok {
			metrics.LookupMisses.Inc()
			writeGeo(w, unresolvedResponse{IPAddress: ipText}, callback)
			return
		}

		res := buildResponse(ipText, rec, lang)
		if rc != nil {
			if b, err := json.Marshal(res); err == nil {
				rc.Set(ctx, "geo:"+ipText+":"+lang, string(b), cacheTTL)
			}
		}
		writeGeo(w, res, callback)
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		if st == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"total": 0, "today": 0, "visitors": 0})
			return
		}
		t, _ := st.GetTotals(r.Context())
		m := map[string]any{"total": t.Total, "today": t.Today, "visitors": t.Visitors}
		_ = json.NewEncoder(w).Encode(m)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		cur := db.Current()
		if cur == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		md := cur.Metadata()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"database":    md.DatabaseType,
			"build_epoch": md.BuildEpoch,
		})
	})

	return mux
}
