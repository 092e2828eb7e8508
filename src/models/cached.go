package models

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/relay-agents/relay/src/cache"
)

// CachedLLM wraps a Model and caches Generate calls.
type CachedLLM struct {
	Model    Model
	Cache    *cache.LRUCache
	FilePath string
}

var _ Model = (*CachedLLM)(nil)

// NewCachedLLM creates a new CachedLLM wrapper.
func NewCachedLLM(model Model, size int, ttl time.Duration, filePath string) *CachedLLM {
	c := &CachedLLM{
		Model:    model,
		Cache:    cache.NewLRUCache(size, ttl),
		FilePath: filePath,
	}
	if filePath != "" {
		c.load()
	}
	return c
}

func (c *CachedLLM) load() {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return // ignore errors (file not found, etc)
	}
	defer f.Close()

	var dump map[string]cache.CacheEntry
	if err := json.NewDecoder(f).Decode(&dump); err == nil {
		c.Cache.Restore(dump)
	}
}

func (c *CachedLLM) save() {
	if c.FilePath == "" {
		return
	}
	dump := c.Cache.Dump()

	// Atomic write: write to temp, then rename
	tmp := c.FilePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}

	if err := json.NewEncoder(f).Encode(dump); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, c.FilePath)
}

// Generate checks the cache before calling the underlying model.
func (c *CachedLLM) Generate(ctx context.Context, prompt string) (string, error) {
	key := cache.HashKey(prompt)
	if val, ok := c.Cache.Get(key); ok {
		if text, ok := val.(string); ok {
			return text, nil
		}
	}

	res, err := c.Model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	c.Cache.Set(key, res)
	c.save()
	return res, nil
}

// GenerateStream passes through to the underlying model's streaming.
// If the prompt is already cached, it returns a single-chunk stream from cache.
// Otherwise, it streams from the underlying model and caches the full result when done.
func (c *CachedLLM) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	key := cache.HashKey(prompt)
	if val, ok := c.Cache.Get(key); ok {
		if text, ok := val.(string); ok {
			ch := make(chan StreamChunk, 1)
			go func() {
				defer close(ch)
				ch <- StreamChunk{Delta: text, Done: true, FullText: text}
			}()
			return ch, nil
		}
	}

	innerCh, err := c.Model.GenerateStream(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk, streamChunkCapacity)
	go func() {
		defer close(ch)
		for chunk := range innerCh {
			ch <- chunk
			if chunk.Done && chunk.FullText != "" && chunk.Err == nil {
				c.Cache.Set(key, chunk.FullText)
				c.save()
			}
		}
	}()

	return ch, nil
}

// TryCreateCachedLLM checks env vars and wraps the model if caching is enabled.
func TryCreateCachedLLM(model Model) Model {
	sizeStr := os.Getenv("RELAY_LLM_CACHE_SIZE")
	if sizeStr == "" {
		return model
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		return model
	}

	ttl := 300 * time.Second // default 5 mins
	if ttlStr := os.Getenv("RELAY_LLM_CACHE_TTL"); ttlStr != "" {
		if sec, err := strconv.Atoi(ttlStr); err == nil && sec > 0 {
			ttl = time.Duration(sec) * time.Second
		}
	}

	path := os.Getenv("RELAY_LLM_CACHE_PATH")
	if path == "" {
		path = ".relay_cache.json"
	}

	return NewCachedLLM(model, size, ttl, path)
}
