package cache

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sustaina/shipping-risk-brain/internal/monitoring"
)

// ScopeKey is the gin context key whose value is mixed into cache keys, so
// responses that depend on the caller are not shared between callers.
const ScopeKey = "cache_scope"

const cleanupInterval = 5 * time.Minute

// CacheItem represents a cached response with expiration
type CacheItem struct {
	Status    int               `json:"status"`
	Header    map[string]string `json:"header"`
	Data      []byte            `json:"data"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// IsExpired checks if the cache item has expired
func (c *CacheItem) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Cache provides thread-safe response caching with TTL
type Cache struct {
	mu       sync.RWMutex
	items    map[string]*CacheItem
	ttl      time.Duration
	maxItems int
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewCache creates a new cache with the specified TTL. maxItems <= 0 means unbounded.
func NewCache(ttl time.Duration, maxItems int) *Cache {
	cache := &Cache{
		items:    make(map[string]*CacheItem),
		ttl:      ttl,
		maxItems: maxItems,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// Close stops the cleanup goroutine
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanup removes expired items periodically
func (c *Cache) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purgeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) purgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, item := range c.items {
		if item.IsExpired() {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// GenerateKey creates a consistent key from the request parts
func GenerateKey(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		_, _ = io.WriteString(h, p)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get retrieves an item from the cache
func (c *Cache) Get(key string) (*CacheItem, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if item.IsExpired() {
		c.Delete(key)
		return nil, false
	}
	return item, true
}

// Set stores an item in the cache, evicting the entry closest to expiry when full
func (c *Cache) Set(key string, item *CacheItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evictOldestLocked()
	}

	item.ExpiresAt = time.Now().Add(c.ttl)
	c.items[key] = item
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.ExpiresAt.Before(oldest) {
			oldestKey, oldest = key, item.ExpiresAt
		}
	}
	delete(c.items, oldestKey)
}

// Delete removes an item from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*CacheItem)
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalItems := len(c.items)
	expiredItems := 0
	totalBytes := 0

	for _, item := range c.items {
		if item.IsExpired() {
			expiredItems++
		}
		totalBytes += len(item.Data)
	}

	return map[string]interface{}{
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"total_bytes":   totalBytes,
		"max_items":     c.maxItems,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}

// cachedHeaders are replayed on a hit
var cachedHeaders = []string{"Content-Type", "Content-Disposition", "X-Certificate-ID"}

// Middleware caches successful POST responses on the given paths, keyed by
// path, calendar day, caller scope and request body.
func (c *Cache) Middleware(metrics *monitoring.Metrics, logger *monitoring.Logger, paths ...string) gin.HandlerFunc {
	cached := make(map[string]bool, len(paths))
	for _, p := range paths {
		cached[p] = true
	}

	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodPost || !cached[ctx.FullPath()] {
			ctx.Next()
			return
		}

		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.Next()
			return
		}
		ctx.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		cacheKey := GenerateKey(
			ctx.FullPath(),
			c.now().UTC().Format("2006-01-02"),
			ctx.GetString(ScopeKey),
			string(body),
		)

		if item, found := c.Get(cacheKey); found {
			logger.CacheLogger("hit", cacheKey, true, c.Size())
			metrics.IncrementCacheHit()
			for name, value := range item.Header {
				ctx.Header(name, value)
			}
			ctx.Header("X-Cache", "HIT")
			ctx.Data(item.Status, item.Header["Content-Type"], item.Data)
			ctx.Abort()
			return
		}

		logger.CacheLogger("miss", cacheKey, false, c.Size())
		metrics.IncrementCacheMiss()
		ctx.Header("X-Cache", "MISS")

		wrapper := &responseWriter{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}
		ctx.Writer = wrapper
		ctx.Next()

		if wrapper.Status() == http.StatusOK && len(ctx.Errors) == 0 {
			header := make(map[string]string, len(cachedHeaders))
			for _, name := range cachedHeaders {
				if v := wrapper.Header().Get(name); v != "" {
					header[name] = v
				}
			}
			c.Set(cacheKey, &CacheItem{
				Status: http.StatusOK,
				Header: header,
				Data:   bytes.Clone(wrapper.body.Bytes()),
			})
			logger.CacheLogger("store", cacheKey, false, c.Size())
		}
	}
}

// responseWriter wraps gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
