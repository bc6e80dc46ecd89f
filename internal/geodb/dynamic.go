package geodb

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
)

// closeGrace：替换后旧句柄的保留时长。
// 约束：必须大于单次查询的最大耗时，否则替换瞬间仍持有旧句柄的
// 请求会踩到已解除映射的内存。
const closeGrace = 5 * time.Second

// Dynamic：可热替换的库句柄。
// 背景：库文件每天更新一次，进程不能为此重启；
// 读路径只做一次原子 Load，替换只做一次原子 Swap。
type Dynamic struct {
	v atomic.Value // 存 *DB
}

// NewDynamic：以一个已打开的句柄初始化。
func NewDynamic(db *DB) *Dynamic {
	d := &Dynamic{}
	d.v.Store(db)
	return d
}

// Current：取当前句柄。调用方在一次请求内只应取一次，
// 后续操作都用取到的句柄，避免跨代混用。
func (d *Dynamic) Current() *DB {
	db, _ := d.v.Load().(*DB)
	return db
}

// Lookup：便捷查询，等价于 Current().Lookup。
func (d *Dynamic) Lookup(ip net.IP) (*geoip2.City, bool, error) {
	return d.Current().Lookup(ip)
}

// Reload：打开 path 指向的新文件并原子替换。
// 旧句柄延迟 closeGrace 关闭，给在途请求留出退出窗口。
// 打开失败时当前句柄保持不变。
func (d *Dynamic) Reload(path string) error {
	db, err := Open(path)
	if err != nil {
		return err
	}
	old, _ := d.v.Swap(db).(*DB)
	if old != nil {
		time.AfterFunc(closeGrace, func() { old.Close() })
	}
	return nil
}
