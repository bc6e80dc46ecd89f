package api

import (
	"net"
	"net/http"
	"strings"
)

// 文档注释：解析查询目标 IP
// 背景：优先显式 ip 参数，其次常见反向代理头，最后回退远端地址；
// 每个候选都必须能解析成合法 IP 才会被采用，否则继续看下一个来源。
// 约束：x-real-ip 取原值；x-forwarded-for 只取第一段。
// 头部存在伪造风险时需结合可信代理白名单处理。
func resolveIP(r *http.Request) net.IP {
	if q := r.URL.Query().Get("ip"); q != "" {
		if ip := net.ParseIP(q); ip != nil {
			return ip
		}
	}
	h := r.Header
	if x := h.Get("x-real-ip"); x != "" {
		if ip := net.ParseIP(x); ip != nil {
			return ip
		}
	}
	if x := h.Get("x-forwarded-for"); x != "" {
		first := strings.TrimSpace(strings.Split(x, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}
	// 远端地址带端口，IPv6 形如 [::1]:80，必须用 SplitHostPort 取主机段
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
		return nil
	}
	return net.ParseIP(r.RemoteAddr)
}

// 文档注释：获取访问者 IP（用于去重与统计）
// 背景：与 resolveIP 分离，避免查询目标与访问来源混淆导致去重不准；
// 查 ip=8.8.8.8 的访问者仍是发请求的那个客户端。
func visitorIP(r *http.Request) string {
	h := r.Header
	if x := h.Get("x-real-ip"); x != "" {
		return x
	}
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
