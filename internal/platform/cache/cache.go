// Package cache keeps rendered notes documents in Dragonfly or Redis.
package cache

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

// DefaultPrefix namespaces document keys.
const DefaultPrefix = "notes:doc:"

// Cache stores JSON-encoded documents under a key prefix with a fixed TTL.
type Cache struct {
	Client *redis.Client
	prefix string
	ttl    time.Duration
}

// Options configures the document store. A zero TTL keeps entries until
// the server evicts them.
type Options struct {
	Prefix string
	TTL    time.Duration
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New connects to the cache at url and checks that it answers.
func New(ctx context.Context, url string, o Options) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	c := NewWithClient(redis.NewClient(opts), o)
	if err := c.Client.Ping(ctx).Err(); err != nil {
		c.Client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return c, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, o Options) *Cache {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	return &Cache{Client: client, prefix: o.Prefix, ttl: o.TTL}
}

// Key hashes parts into a fixed-length key. Parts are length-delimited, so
// ("ab", "c") and ("a", "bc") never collide.
func Key(parts ...string) string {
	h, _ := blake2b.New256(nil)
	for _, p := range parts {
		h.Write(binary.LittleEndian.AppendUint64(nil, uint64(len(p))))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get decodes the document at key into v. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.Client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores v at key.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache key %s: %w", key, err)
	}
	if err := c.Client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}
	return nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
