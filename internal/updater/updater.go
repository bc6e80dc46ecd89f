// 包 updater：从上游拉取地理库压缩包并原子替换在用文件，作为离线数据通道
package updater

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"geoip-api/internal/geodb"
	"geoip-api/internal/logger"
	"geoip-api/internal/metrics"
)

const (
	downloadURL  = "https://download.maxmind.com/app/geoip_download"
	fetchTimeout = 5 * time.Minute
)

// Updater：一组库版本的下载与替换配置。
// 约束：DB 为 nil 时仅落盘不热加载，供一次性命令使用。
type Updater struct {
	DB       *geodb.Dynamic
	Path     string
	License  string
	Editions []string
	Endpoint string
}

// New：构建更新器；editions 为空时默认 GeoLite2-City。
func New(db *geodb.Dynamic, path, license string, editions []string) *Updater {
	if len(editions) == 0 {
		editions = []string{"GeoLite2-City"}
	}
	return &Updater{
		DB:       db,
		Path:     path,
		License:  license,
		Editions: editions,
		Endpoint: downloadURL,
	}
}

// RunOnce：对配置的每个版本执行一次下载与替换，有成功时重载在用库。
// 背景：未配置许可密钥时整体跳过，静默保持现有库继续服务。
// 异常：单个版本失败不影响其他版本；全部失败时返回错误（交由调度层记录）。
func (u *Updater) RunOnce(ctx context.Context) error {
	if u.License == "" {
		logger.L().Debug("update_skip_no_license")
		return nil
	}
	okCount := 0
	for _, ed := range u.Editions {
		logger.L().Info("update_start", "edition", ed)
		if err := u.refreshEdition(ctx, ed); err != nil {
			metrics.DBUpdates.WithLabelValues(ed, "error").Inc()
			logger.L().Error("update_edition_error", "edition", ed, "err", err)
			continue
		}
		metrics.DBUpdates.WithLabelValues(ed, "ok").Inc()
		logger.L().Info("update_edition_done", "edition", ed)
		okCount++
	}
	if okCount == 0 {
		return errors.New("all editions failed")
	}
	if u.DB != nil {
		if err := u.DB.Reload(u.Path); err != nil {
			logger.L().Error("db_reload_error", "path", u.Path, "err", err)
			return err
		}
		md := u.DB.Current().Metadata()
		metrics.DBBuildEpoch.WithLabelValues(md.DatabaseType).Set(float64(md.BuildEpoch))
		logger.L().Info("db_reloaded", "path", u.Path, "build_epoch", md.BuildEpoch)
	}
	return nil
}

// refreshEdition：下载单个版本的 tar.gz 并安装其中的 mmdb 文件。
// 约束：上游必须返回 Content-Length，按长度精确读满；短读视为失败。
func (u *Updater) refreshEdition(ctx context.Context, edition string) error {
	q := url.Values{}
	q.Set("edition_id", edition)
	q.Set("license_key", u.License)
	q.Set("suffix", "tar.gz")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("bad status %d", resp.StatusCode)
	}
	if resp.ContentLength <= 0 {
		return errors.New("missing content length")
	}
	body := make([]byte, resp.ContentLength)
	if _, err := io.ReadFull(resp.Body, body); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return u.installFromArchive(edition, body)
}

// installFromArchive：在压缩包里找到以 <edition>.mmdb 结尾的成员并安装。
func (u *Updater) installFromArchive(edition string, body []byte) error {
	gz, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, edition+".mmdb") {
			continue
		}
		return u.install(edition, tr)
	}
	return fmt.Errorf("archive has no %s.mmdb entry", edition)
}

// install：先写同目录临时文件再重命名到在用路径。
// 为什么：同目录重命名是原子的，读侧看到的文件要么旧要么新，不会半截。
func (u *Updater) install(edition string, src io.Reader) error {
	dir := filepath.Dir(u.Path)
	tmp, err := os.CreateTemp(dir, edition+"-*.mmdb.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), u.Path)
}
