// Package images serves quiz image files from disk through a bounded LRU cache.
package images

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vytor/mriflash/internal/models"
)

// ErrInvalidPath is returned for filenames that would escape the category folder.
var ErrInvalidPath = errors.New("invalid image path")

// Cache reads images from <root>/<t1|t2>/<filename> and keeps the most
// recently used ones in memory. It is safe for concurrent use.
type Cache struct {
	root     string
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	loads   singleflight.Group
}

type entry struct {
	key  string
	data []byte
}

// NewCache returns a cache over root holding at most capacity images.
// A capacity of zero disables caching.
func NewCache(root string, capacity int) *Cache {
	return &Cache{
		root:     root,
		capacity: max(capacity, 0),
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Load returns the bytes of the image file, reading it from disk on a miss.
// Concurrent misses for the same file share one read.
func (c *Cache) Load(ctx context.Context, cat models.Category, filename string) ([]byte, error) {
	key, err := cacheKey(cat, filename)
	if err != nil {
		return nil, err
	}
	if data, ok := c.get(key); ok {
		return data, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// The shared read does not observe any caller's ctx.
	v, err, _ := c.loads.Do(key, func() (any, error) {
		data, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(key)))
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", key, err)
		}
		c.put(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Prefetch loads img into the cache.
func (c *Cache) Prefetch(ctx context.Context, img models.Image) error {
	_, err := c.Load(ctx, img.Category, img.Filename)
	return err
}

// Contains reports whether the image is cached, without touching its recency.
func (c *Cache) Contains(cat models.Category, filename string) bool {
	key, err := cacheKey(cat, filename)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).data, true
}

func (c *Cache) put(key string, data []byte) {
	if c.capacity == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).data = data
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
	c.entries[key] = c.order.PushFront(&entry{key: key, data: data})
}

func cacheKey(cat models.Category, filename string) (string, error) {
	if !cat.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidPath, cat)
	}
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, filename)
	}
	return cat.Dir() + "/" + filename, nil
}
