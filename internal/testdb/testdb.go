// 包 testdb：构造测试用的最小城市库文件，避免测试依赖真实数据下载
package testdb

import (
	"bytes"
	"net"
	"os"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
)

// 固定样本：三段公共地址，覆盖多语言名称、多级行政区划与无行政区划
var samples = map[string]mmdbtype.Map{
	"8.8.8.0/24": {
		"city": mmdbtype.Map{
			"names": mmdbtype.Map{
				"en":    mmdbtype.String("Mountain View"),
				"zh-CN": mmdbtype.String("山景城"),
			},
		},
		"continent": mmdbtype.Map{
			"code":  mmdbtype.String("NA"),
			"names": mmdbtype.Map{"en": mmdbtype.String("North America")},
		},
		"country": mmdbtype.Map{
			"iso_code": mmdbtype.String("US"),
			"names": mmdbtype.Map{
				"en":    mmdbtype.String("United States"),
				"zh-CN": mmdbtype.String("美国"),
			},
		},
		"location": mmdbtype.Map{
			"latitude":  mmdbtype.Float64(37.386),
			"longitude": mmdbtype.Float64(-122.0838),
			"time_zone": mmdbtype.String("America/Los_Angeles"),
		},
		"postal": mmdbtype.Map{"code": mmdbtype.String("94035")},
		"subdivisions": mmdbtype.Slice{
			mmdbtype.Map{
				"iso_code": mmdbtype.String("CA"),
				"names":    mmdbtype.Map{"en": mmdbtype.String("California")},
			},
			mmdbtype.Map{
				"iso_code": mmdbtype.String("SCC"),
				"names":    mmdbtype.Map{"en": mmdbtype.String("Santa Clara")},
			},
		},
	},
	"81.2.69.0/24": {
		"city": mmdbtype.Map{
			"names": mmdbtype.Map{"en": mmdbtype.String("London")},
		},
		"continent": mmdbtype.Map{
			"code":  mmdbtype.String("EU"),
			"names": mmdbtype.Map{"en": mmdbtype.String("Europe")},
		},
		"country": mmdbtype.Map{
			"iso_code": mmdbtype.String("GB"),
			"names":    mmdbtype.Map{"en": mmdbtype.String("United Kingdom")},
		},
		"location": mmdbtype.Map{
			"latitude":  mmdbtype.Float64(51.5142),
			"longitude": mmdbtype.Float64(-0.0931),
			"time_zone": mmdbtype.String("Europe/London"),
		},
		"subdivisions": mmdbtype.Slice{
			mmdbtype.Map{
				"iso_code": mmdbtype.String("ENG"),
				"names":    mmdbtype.Map{"en": mmdbtype.String("England")},
			},
		},
	},
	"1.1.1.0/24": {
		"city": mmdbtype.Map{
			"names": mmdbtype.Map{"en": mmdbtype.String("Sydney")},
		},
		"continent": mmdbtype.Map{
			"code":  mmdbtype.String("OC"),
			"names": mmdbtype.Map{"en": mmdbtype.String("Oceania")},
		},
		"country": mmdbtype.Map{
			"iso_code": mmdbtype.String("AU"),
			"names":    mmdbtype.Map{"en": mmdbtype.String("Australia")},
		},
		"location": mmdbtype.Map{
			"latitude":  mmdbtype.Float64(-33.8591),
			"longitude": mmdbtype.Float64(151.2002),
			"time_zone": mmdbtype.String("Australia/Sydney"),
		},
	},
}

// BuildCity：生成 City 口径的最小库并返回原始字节。
// networks 为空时写入全部样本网段。
func BuildCity(tb testing.TB, networks ...string) []byte {
	tb.Helper()
	if len(networks) == 0 {
		for c := range samples {
			networks = append(networks, c)
		}
	}
	w, err := mmdbwriter.New(mmdbwriter.Options{
		DatabaseType: "GeoLite2-City",
		Languages:    []string{"en", "zh-CN"},
		RecordSize:   24,
	})
	if err != nil {
		tb.Fatalf("new mmdb writer: %v", err)
	}
	for _, c := range networks {
		rec, ok := samples[c]
		if !ok {
			tb.Fatalf("no sample for %s", c)
		}
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			tb.Fatalf("parse cidr %s: %v", c, err)
		}
		if err := w.Insert(n, rec); err != nil {
			tb.Fatalf("insert %s: %v", c, err)
		}
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		tb.Fatalf("write mmdb: %v", err)
	}
	return buf.Bytes()
}

// WriteCity：把最小库写入 path。
// 与线上替换方式一致：同目录先写临时文件再重命名，
// 原地截断会让已打开句柄的 mmap 读到新字节而损坏。
func WriteCity(tb testing.TB, path string, networks ...string) {
	tb.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, BuildCity(tb, networks...), 0o644); err != nil {
		tb.Fatalf("write db file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		tb.Fatalf("replace db file: %v", err)
	}
}
