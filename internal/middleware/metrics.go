package middleware

import (
	"net/http"
	"strconv"

	"geoip-api/internal/metrics"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Metrics：按路径与状态码计数请求。
// 约束：未注册的路径一律归并为 other，避免标签基数失控。
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		path := r.URL.Path
		switch path {
		case "/", "/stats", "/healthz", "/metrics":
		default:
			path = "other"
		}
		metrics.HTTPRequests.WithLabelValues(path, strconv.Itoa(sw.status)).Inc()
	})
}
