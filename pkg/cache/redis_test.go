package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Runs against a live server only when GENPOSTER_TEST_REDIS is set,
// e.g. GENPOSTER_TEST_REDIS=redis://localhost:6379/15.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("GENPOSTER_TEST_REDIS")
	if url == "" {
		t.Skip("GENPOSTER_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "genposter-test:" + uuid.NewString()
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get missing = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("poster"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(got) != "poster" {
		t.Fatalf("Get = %q, hit %v, err %v", got, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry still present after Delete")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url"); err == nil {
		t.Error("NewRedisCache should reject a malformed url")
	}
}
