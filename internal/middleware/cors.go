package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS：跨域策略。
// 约束：只放行 GET；允许头列表与既有客户端约定一致；预检结果缓存一小时。
func CORS(next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{
			"Authorization",
			"Accept",
			"Forwarded",
			"Content-Type",
			"X-Real-IP",
			"X-Forwarded-For",
		},
		MaxAge: 3600,
	})
	return c.Handler(next)
}

// Wrap：组装入口处理链。
// 约束：CORS 在最外层，预检与限流响应都带跨域头；
// 指标层在限流外侧，被拒绝的请求同样计数。
func Wrap(next http.Handler) http.Handler {
	return CORS(Metrics(RateLimit(next)))
}
