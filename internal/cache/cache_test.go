package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/jsquiz/internal/quiz"
)

var (
	_ quiz.Cache = (*Memory)(nil)
	_ quiz.Cache = (*Redis)(nil)
)

type item struct {
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

func exercise(t *testing.T, c quiz.Cache, key string) {
	t.Helper()
	ctx := context.Background()

	var got []item
	if ok, err := c.Get(ctx, key, &got); err != nil || ok {
		t.Fatalf("empty get = %v, %v", ok, err)
	}
	want := []item{{"basics", 1}, {"async", 2}}
	if err := c.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, err := c.Get(ctx, key, &got); err != nil || !ok {
		t.Fatalf("get after set = %v, %v", ok, err)
	}
	if len(got) != 2 || got[1] != want[1] {
		t.Fatalf("round trip = %+v", got)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := c.Get(ctx, key, &got); ok {
		t.Fatalf("hit after delete")
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory(), "catalog:categories")
}

func TestMemoryExpires(t *testing.T) {
	m := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "k", 1, time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set(ctx, "forever", 2, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(2 * time.Second)

	var v int
	if ok, _ := m.Get(ctx, "k", &v); ok {
		t.Fatalf("expired entry returned")
	}
	if ok, _ := m.Get(ctx, "forever", &v); !ok || v != 2 {
		t.Fatalf("entry without ttl expired")
	}
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r, err := NewRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	exercise(t, r, "test:"+uuid.NewString())
}
