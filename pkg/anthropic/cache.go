package anthropic

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ResponseCache is a bounded in-memory cache of message responses with TTL
// eviction. It is explicitly owned by whoever constructs the caching client;
// there is no process-wide instance, so concurrent pipelines in tests stay
// isolated.
type ResponseCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	now     func() time.Time
}

type cacheEntry struct {
	key       string
	resp      MessageResponse
	expiresAt time.Time
}

// NewResponseCache creates a cache holding at most maxSize entries, each
// valid for ttl. maxSize <= 0 disables bounding; ttl <= 0 disables expiry.
func NewResponseCache(maxSize int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// CacheKey derives a stable key from the model and full request content.
func CacheKey(req MessageRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|", req.Model, req.MaxTokens)
	if req.Temperature != nil {
		fmt.Fprintf(h, "%g|", *req.Temperature)
	}
	for _, s := range req.System {
		h.Write([]byte(s.Text))
		h.Write([]byte{0})
	}
	for _, m := range req.Messages {
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached response and true if present and unexpired.
func (c *ResponseCache) Get(key string) (*MessageResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	resp := entry.resp
	resp.Cached = true
	return &resp, true
}

// Put stores a response, evicting the least recently used entry when full.
func (c *ResponseCache) Put(key string, resp MessageResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.resp = resp
		entry.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	entry := &cacheEntry{key: key, resp: resp, expiresAt: c.now().Add(c.ttl)}
	c.entries[key] = c.order.PushFront(entry)

	if c.maxSize > 0 && c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of live entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// cachingClient decorates a Client with a ResponseCache.
type cachingClient struct {
	inner Client
	cache *ResponseCache
}

// WithCache wraps client so identical requests within the cache TTL are
// served locally without an API call.
func WithCache(client Client, cache *ResponseCache) Client {
	return &cachingClient{inner: client, cache: cache}
}

func (c *cachingClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	key := CacheKey(req)
	if resp, ok := c.cache.Get(key); ok {
		zap.L().Debug("anthropic: cache hit", zap.String("model", req.Model))
		return resp, nil
	}

	resp, err := c.inner.CreateMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, *resp)
	return resp, nil
}
