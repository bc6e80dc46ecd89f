package api

import (
	"net"
	"path/filepath"
	"testing"

	"geoip-api/internal/geodb"
	"geoip-api/internal/testdb"

	"github.com/oschwald/geoip2-golang"
)

// fixtureDynamic：基于样本库构造可热替换句柄，供路由测试使用
func fixtureDynamic(t *testing.T, networks ...string) *geodb.Dynamic {
	t.Helper()
	path := filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
	testdb.WriteCity(t, path, networks...)
	db, err := geodb.Open(path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return geodb.NewDynamic(db)
}

// fixtureCity：取样本库中一条城市记录
func fixtureCity(t *testing.T, ip string) *geoip2.City {
	t.Helper()
	dyn := fixtureDynamic(t)
	rec, ok, err := dyn.Lookup(net.ParseIP(ip))
	if err != nil || !ok {
		t.Fatalf("fixture lookup %s: ok=%v err=%v", ip, ok, err)
	}
	return rec
}
