// 库更新工具：下载配置的地理库版本并安装到目标路径，适合 cron 或手工执行
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"geoip-api/internal/updater"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	path := os.Getenv("GEOIP_DB_PATH")
	if path == "" {
		log.Fatal("GEOIP_DB_PATH is required")
	}
	license := os.Getenv("GEOIP_LICENSE")
	if license == "" {
		log.Fatal("GEOIP_LICENSE is required")
	}
	u := updater.New(nil, path, license, updater.EditionsFromEnv())
	if err := u.RunOnce(context.Background()); err != nil {
		log.Fatal(err)
	}
	fmt.Println("updated", path)
}
