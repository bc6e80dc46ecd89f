package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func doGet(t *testing.T, mux *http.ServeMux, target string, mod func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("GET", target, nil)
	if mod != nil {
		mod(r)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func decodeGeo(t *testing.T, w *httptest.ResponseRecorder) geoResponse {
	t.Helper()
	var res geoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return res
}

func TestLookupEndpoint(t *testing.T) {
	mux := BuildRoutes(fixtureDynamic(t), nil, nil, time.Hour)

	t.Run("query param", func(t *testing.T) {
		w := doGet(t, mux, "/?ip=8.8.8.8&lang=en", nil)
		if w.Code != 200 {
			t.Fatalf("status = %d", w.Code)
		}
		res := decodeGeo(t, w)
		if res.IPAddress != "8.8.8.8" || res.CountryCode != "US" || res.CityName != "Mountain View" {
			t.Errorf("unexpected response: %+v", res)
		}
	})

	t.Run("default language english", func(t *testing.T) {
		res := decodeGeo(t, doGet(t, mux, "/?ip=8.8.8.8", nil))
		if res.CountryName != "United States" {
			t.Errorf("country name = %q", res.CountryName)
		}
	})

	t.Run("header source", func(t *testing.T) {
		w := doGet(t, mux, "/", func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "81.2.69.9, 10.0.0.1")
		})
		res := decodeGeo(t, w)
		if res.IPAddress != "81.2.69.9" || res.CountryCode != "GB" {
			t.Errorf("unexpected response: %+v", res)
		}
	})

	t.Run("unknown address still 200", func(t *testing.T) {
		w := doGet(t, mux, "/?ip=203.0.113.5", nil)
		if w.Code != 200 {
			t.Fatalf("status = %d", w.Code)
		}
		var m map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		// 未命中只回显地址本身
		if len(m) != 1 || m["ip_address"] != "203.0.113.5" {
			t.Errorf("unresolved body = %s", w.Body.String())
		}
	})

	t.Run("jsonp", func(t *testing.T) {
		w := doGet(t, mux, "/?ip=8.8.8.8&callback=cb", nil)
		if w.Code != 200 {
			t.Fatalf("status = %d", w.Code)
		}
		if ct := w.Header().Get("content-type"); ct != "application/javascript; charset=utf-8" {
			t.Errorf("content-type = %q", ct)
		}
		body := w.Body.String()
		if !strings.HasPrefix(body, ";cb(") || !strings.HasSuffix(body, ");") {
			t.Errorf("jsonp framing broken: %s", body)
		}
	})

	t.Run("no resolvable source", func(t *testing.T) {
		w := doGet(t, mux, "/", func(r *http.Request) { r.RemoteAddr = "" })
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		var m map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil || m["error"] == "" {
			t.Errorf("error body = %q", w.Body.String())
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		if w := doGet(t, mux, "/nope", nil); w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestHealthz(t *testing.T) {
	mux := BuildRoutes(fixtureDynamic(t), nil, nil, time.Hour)
	w := doGet(t, mux, "/healthz", nil)
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["status"] != "ok" || m["database"] != "GeoLite2-City" {
		t.Errorf("unexpected health body: %v", m)
	}
}

func TestStatsWithoutStore(t *testing.T) {
	mux := BuildRoutes(fixtureDynamic(t), nil, nil, time.Hour)
	w := doGet(t, mux, "/stats", nil)
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	var m map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["total"] != 0 || m["today"] != 0 || m["visitors"] != 0 {
		t.Errorf("unexpected stats: %v", m)
	}
}
