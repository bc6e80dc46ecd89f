package api

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 每日访客位图参数：1<<24 位约 2MB，8 次哈希；按日轮换键名。
const (
	visitorBloomBits   = uint32(1 << 24)
	visitorBloomHashes = 8
)

// 文档注释：计算布隆过滤器位置
// 参数：data 为参与哈希的字节序列，m 为位图大小（建议 2 的幂以便分布更均匀），k 为哈希次数。
// 背景：使用 FNV64a 结合索引扰动生成 k 个位置，用于 GetBit/SetBit。
func bloomPositions(data []byte, m uint32, k int) []int64 {
	pos := make([]int64, k)
	for i := 0; i < k; i++ {
		h := fnv.New64a()
		h.Write([]byte{byte(i)})
		h.Write(data)
		v := h.Sum64()
		p := uint32(v % uint64(m))
		pos[i] = int64(p)
	}
	return pos
}

// 文档注释：检查并写入布隆过滤器位图
// 返回：true 表示首次见到（已写入位图）；false 表示已存在。
// 异常：Redis 交互错误时返回 error，调用方自行决定降级策略。
func bloomCheckAndSet(ctx context.Context, rc *redis.Client, key string, positions []int64, ttl time.Duration) (bool, error) {
	seen := true
	for _, p := range positions {
		b, err := rc.GetBit(ctx, key, p).Result()
		if err != nil {
			return false, err
		}
		if b == 0 {
			seen = false
		}
	}
	if !seen {
		for _, p := range positions {
			_, _ = rc.SetBit(ctx, key, p, 1).Result()
		}
		_ = rc.Expire(ctx, key, ttl).Err()
		return true, nil
	}
	return false, nil
}

// firstSeenToday：判断访客当天是否首次出现，用于独立访客计数。
// 约束：Redis 未配置或出错时一律按"非首次"处理，宁可少计不重计。
func firstSeenToday(ctx context.Context, rc *redis.Client, visitor string) bool {
	if rc == nil || visitor == "" {
		return false
	}
	key := "bf:visitors:" + time.Now().Format("20060102")
	pos := bloomPositions([]byte(visitor), visitorBloomBits, visitorBloomHashes)
	fresh, err := bloomCheckAndSet(ctx, rc, key, pos, 48*time.Hour)
	if err != nil {
		return false
	}
	return fresh
}
