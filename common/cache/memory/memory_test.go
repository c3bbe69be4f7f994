package memory_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/cache"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/cache/memory"
)

type payload struct {
	Name string `json:"name"`
}

func (p payload) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *payload) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}

func TestSetGetString(t *testing.T) {
	c := memory.New(cache.Options{DefaultTTL: time.Minute})
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var got string
	if err := c.Get(ctx, "key", &got); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestSetGetBinary(t *testing.T) {
	c := memory.New(cache.Options{DefaultTTL: time.Minute})
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "key", payload{Name: "Ada"}, 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var got payload
	if err := c.Get(ctx, "key", &got); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("Get = %+v, want Name=Ada", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	c := memory.New(cache.Options{DefaultTTL: time.Minute})
	defer c.Close()

	var got string
	if err := c.Get(context.Background(), "absent", &got); err != cache.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryExpires(t *testing.T) {
	c := memory.New(cache.Options{DefaultTTL: time.Minute})
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "key", "value", 10*time.Millisecond); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	var got string
	if err := c.Get(ctx, "key", &got); err != cache.ErrNotFound {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	c := memory.New(cache.Options{DefaultTTL: time.Minute})
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	var got string
	if err := c.Get(ctx, "key", &got); err != cache.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestInvalidValueType(t *testing.T) {
	c := memory.New(cache.Options{DefaultTTL: time.Minute})
	defer c.Close()

	if err := c.Set(context.Background(), "key", 42, 0); err != cache.ErrInvalidValue {
		t.Fatalf("expected ErrInvalidValue for unsupported type, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := memory.New(cache.Options{DefaultTTL: time.Minute})
	defer c.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%4)
			_ = c.Set(ctx, key, "value", 0)
			var got string
			_ = c.Get(ctx, key, &got)
			_ = c.Delete(ctx, key)
		}(i)
	}
	wg.Wait()
}
