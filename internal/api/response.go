package api

import (
	"encoding/json"
	"net/http"

	"github.com/oschwald/geoip2-golang"
)

// 文档注释：命中记录时的查询返回结构（对外）
// 背景：统一对外序列化模型，字段名与既有客户端约定保持一致。
// 约束：字段稳定，全部字段总是出现；词条缺失的取零值而不是省略。
type geoResponse struct {
	IPAddress     string  `json:"ip_address"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PostalCode    string  `json:"postal_code"`
	ContinentCode string  `json:"continent_code"`
	CountryCode   string  `json:"country_code"`
	CountryName   string  `json:"country_name"`
	RegionCode    string  `json:"region_code"`
	RegionName    string  `json:"region_name"`
	ProvinceCode  string  `json:"province_code"`
	ProvinceName  string  `json:"province_name"`
	CityName      string  `json:"city_name"`
	Timezone      string  `json:"timezone"`
}

// unresolvedResponse：库中无记录时的返回结构，只回显地址本身。
type unresolvedResponse struct {
	IPAddress string `json:"ip_address"`
}

// localized：取指定语言的名称词条。
// 约束：没有该语言就返回空串，不回退英文，避免把未翻译内容当成已翻译。
func localized(names map[string]string, lang string) string {
	return names[lang]
}

// buildResponse：把一条命中的城市记录映射为对外结构。
// 约束：行政区划第一层映射 region，第二层映射 province，其余层级忽略；
// 未命中不走这里，由调用方输出 unresolvedResponse。
func buildResponse(ip string, rec *geoip2.City, lang string) geoResponse {
	res := geoResponse{IPAddress: ip}
	res.Latitude = rec.Location.Latitude
	res.Longitude = rec.Location.Longitude
	res.PostalCode = rec.Postal.Code
	res.ContinentCode = rec.Continent.Code
	res.CountryCode = rec.Country.IsoCode
	res.CountryName = localized(rec.Country.Names, lang)
	if len(rec.Subdivisions) > 0 {
		res.RegionCode = rec.Subdivisions[0].IsoCode
		res.RegionName = localized(rec.Subdivisions[0].Names, lang)
	}
	if len(rec.Subdivisions) > 1 {
		res.ProvinceCode = rec.Subdivisions[1].IsoCode
		res.ProvinceName = localized(rec.Subdivisions[1].Names, lang)
	}
	res.CityName = localized(rec.City.Names, lang)
	res.Timezone = rec.Location.TimeZone
	return res
}

// writeGeo：序列化并写出查询结果，命中与未命中两种结构都从这里出。
func writeGeo(w http.ResponseWriter, v any, callback string) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeGeoRaw(w, b, callback)
}

// writeGeoRaw：写出已序列化的结果字节。
// callback 非空时按 JSONP 包装成 ;callback(body); 并标记为脚本类型，
// 否则按普通 JSON 输出；两种情况都返回 200。
func writeGeoRaw(w http.ResponseWriter, body []byte, callback string) {
	w.Header().Set("cache-control", "no-store")
	if callback != "" {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		_, _ = w.Write([]byte(";" + callback + "("))
		_, _ = w.Write(body)
		_, _ = w.Write([]byte(");"))
		return
	}
	w.Header().Set("content-type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}

// writeError：解析不出任何来源 IP 时的错误输出。
func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
