// 包 geodb：封装 MaxMind 库文件的打开、查询与热替换。
// 上层只关心"给我一个 IP 的城市记录"，不关心底层文件何时被更新。
package geodb

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

// DB：一次打开的库文件句柄。
// 约束：Close 之后不可再查询；热替换场景由 Dynamic 统一管理生命周期。
type DB struct {
	reader *maxminddb.Reader
	path   string
}

// Open：打开指定路径的 mmdb 文件。
func Open(path string) (*DB, error) {
	r, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb %s: %w", path, err)
	}
	return &DB{reader: r, path: path}, nil
}

// Lookup：查询一个 IP 的城市记录。
// 为什么用 LookupNetwork：City 口径下查不到时不会报错，
// 只有返回的 ok 能区分"无记录"与"零值记录"。
func (d *DB) Lookup(ip net.IP) (*geoip2.City, bool, error) {
	var rec geoip2.City
	_, ok, err := d.reader.LookupNetwork(ip, &rec)
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", ip, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

// Metadata：返回库文件自带的元信息。
func (d *DB) Metadata() maxminddb.Metadata {
	return d.reader.Metadata
}

// Path：返回打开时使用的文件路径。
func (d *DB) Path() string {
	return d.path
}

// Close：关闭底层文件映射。
func (d *DB) Close() error {
	return d.reader.Close()
}
