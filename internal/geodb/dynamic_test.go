package geodb

import (
	"net"
	"path/filepath"
	"sync"
	"testing"

	"geoip-api/internal/testdb"
)

func TestDynamicReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "GeoLite2-City.mmdb")
	testdb.WriteCity(t, path, "8.8.8.0/24")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	dyn := NewDynamic(db)
	t.Cleanup(func() { dyn.Current().Close() })

	if _, ok, _ := dyn.Lookup(net.ParseIP("81.2.69.9")); ok {
		t.Fatal("81.2.69.9 must be absent before reload")
	}

	testdb.WriteCity(t, path)
	if err := dyn.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}

	rec, ok, err := dyn.Lookup(net.ParseIP("81.2.69.9"))
	if err != nil || !ok {
		t.Fatalf("lookup after reload: ok=%v err=%v", ok, err)
	}
	if rec.Country.IsoCode != "GB" {
		t.Errorf("country = %q, want GB", rec.Country.IsoCode)
	}

	// 旧句柄在宽限期内仍可查询，在途请求不受替换影响
	if _, _, err := db.Lookup(net.ParseIP("8.8.8.8")); err != nil {
		t.Errorf("old handle lookup: %v", err)
	}
}

func TestDynamicReloadBadPathKeepsCurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "GeoLite2-City.mmdb")
	testdb.WriteCity(t, path)
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	dyn := NewDynamic(db)

	if err := dyn.Reload(filepath.Join(dir, "absent.mmdb")); err == nil {
		t.Fatal("expected reload error")
	}
	if dyn.Current() != db {
		t.Fatal("current handle must stay unchanged after failed reload")
	}
	if _, ok, err := dyn.Lookup(net.ParseIP("8.8.8.8")); err != nil || !ok {
		t.Fatalf("lookup after failed reload: ok=%v err=%v", ok, err)
	}
}

func TestDynamicConcurrentLookupDuringReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "GeoLite2-City.mmdb")
	testdb.WriteCity(t, path)
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	dyn := NewDynamic(db)
	t.Cleanup(func() { dyn.Current().Close() })

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ip := net.ParseIP("8.8.8.8")
			for {
				select {
				case <-stop:
					return
				default:
				}
				if _, _, err := dyn.Lookup(ip); err != nil {
					t.Errorf("lookup during reload: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		if err := dyn.Reload(path); err != nil {
			t.Fatalf("reload %d: %v", i, err)
		}
	}
	close(stop)
	wg.Wait()
}
