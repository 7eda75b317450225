// Package cache 带过期时间的内存缓存，排程引擎用它保存每个方向最近一次的排程结果
package cache

import (
	"sync"
	"time"
)

// ResultCache 结果缓存接口（对外导出）
type ResultCache[V any] interface {
	// Set 设置缓存值
	// key: 缓存键
	// value: 结果数据
	// ttl: 缓存有效期，<=0 表示不过期
	Set(key string, value V, ttl time.Duration)

	// Get 获取缓存值
	// 返回: 结果数据和是否存在（已过期视为不存在）
	Get(key string) (V, bool)

	// Delete 删除缓存值
	Delete(key string)

	// Clear 清空所有缓存
	Clear()
}

// cacheEntry 缓存条目（内部使用）
type cacheEntry[V any] struct {
	value      V
	expireTime time.Time // 零值表示不过期
}

func (e *cacheEntry[V]) expired(now time.Time) bool {
	return !e.expireTime.IsZero() && now.After(e.expireTime)
}

// MemoryResultCache 内存结果缓存实现（对外导出）
type MemoryResultCache[V any] struct {
	mu     sync.RWMutex
	cache  map[string]*cacheEntry[V]
	now    func() time.Time
	stopCh chan struct{}
	once   sync.Once
}

// NewMemoryResultCache 创建内存结果缓存实例（对外导出）
// cleanInterval > 0 时启动清理协程，定期清理过期缓存；使用完毕需调用Close
func NewMemoryResultCache[V any](cleanInterval time.Duration) *MemoryResultCache[V] {
	c := &MemoryResultCache[V]{
		cache:  make(map[string]*cacheEntry[V]),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	if cleanInterval > 0 {
		go c.cleanupExpired(cleanInterval)
	}
	return c
}

// Set 设置缓存值
func (c *MemoryResultCache[V]) Set(key string, value V, ttl time.Duration) {
	if key == "" {
		return // 空key，忽略
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry[V]{value: value}
	if ttl > 0 {
		entry.expireTime = c.now().Add(ttl)
	}
	c.cache[key] = entry
}

// Get 获取缓存值
func (c *MemoryResultCache[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	c.mu.RLock()
	entry, exists := c.cache[key]
	c.mu.RUnlock()
	if !exists {
		return zero, false
	}

	if entry.expired(c.now()) {
		c.mu.Lock()
		// 加写锁期间可能已被重新Set
		if current, ok := c.cache[key]; ok && current == entry {
			delete(c.cache, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return entry.value, true
}

// Delete 删除缓存值
func (c *MemoryResultCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

// Clear 清空所有缓存
func (c *MemoryResultCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cacheEntry[V])
}

// Len 返回当前条目数（含未清理的过期条目）
func (c *MemoryResultCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Close 停止清理协程
func (c *MemoryResultCache[V]) Close() {
	c.once.Do(func() { close(c.stopCh) })
}

// purge 清理过期条目
func (c *MemoryResultCache[V]) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.cache {
		if entry.expired(now) {
			delete(c.cache, key)
		}
	}
}

// cleanupExpired 清理过期缓存（内部方法）
func (c *MemoryResultCache[V]) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purge()
		case <-c.stopCh:
			return
		}
	}
}
