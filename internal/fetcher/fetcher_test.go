package fetcher

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatchFetch_OneResultPerDistinctKey(t *testing.T) {
	keys := []string{"0xa", "0xb", "0xc", "0xb", "0xa"}
	results := BatchFetch(context.Background(), keys, 2, func(ctx context.Context, key string) (string, error) {
		return "v:" + key, nil
	})
	if len(results) != 3 {
		t.Fatalf("len=%d want 3", len(results))
	}
	for _, key := range []string{"0xa", "0xb", "0xc"} {
		res, ok := results[key]
		if !ok {
			t.Fatalf("missing key %s", key)
		}
		if !res.Success() || res.Value != "v:"+key {
			t.Fatalf("key %s: %+v", key, res)
		}
	}
}

func TestBatchFetch_ConcurrencyCeiling(t *testing.T) {
	const ceiling = 3
	var active, maxActive int64
	keys := make([]string, 20)
	for i := range keys {
		keys[i] = fmt.Sprintf("0x%02d", i)
	}

	BatchFetch(context.Background(), keys, ceiling, func(ctx context.Context, key string) (int, error) {
		n := atomic.AddInt64(&active, 1)
		for {
			m := atomic.LoadInt64(&maxActive)
			if n <= m || atomic.CompareAndSwapInt64(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return 0, nil
	})

	if got := atomic.LoadInt64(&maxActive); got > ceiling {
		t.Fatalf("max in-flight=%d exceeded ceiling %d", got, ceiling)
	}
}

func TestBatchFetch_FailureDoesNotAffectOthers(t *testing.T) {
	keys := []string{"0xgood", "0xbad", "0xslow"}
	results := BatchFetch(context.Background(), keys, 2, func(ctx context.Context, key string) (string, error) {
		switch key {
		case "0xbad":
			return "", fmt.Errorf("upstream rejected %s", key)
		case "0xslow":
			time.Sleep(10 * time.Millisecond)
		}
		return "ok", nil
	})

	if res := results["0xbad"]; res.Success() {
		t.Fatalf("0xbad should have failed")
	}
	for _, key := range []string{"0xgood", "0xslow"} {
		if res := results[key]; !res.Success() || res.Value != "ok" {
			t.Fatalf("key %s degraded by sibling failure: %+v", key, res)
		}
	}
}

func TestBatchFetch_PanicBecomesFailureEntry(t *testing.T) {
	results := BatchFetch(context.Background(), []string{"0xboom", "0xfine"}, 2, func(ctx context.Context, key string) (int, error) {
		if key == "0xboom" {
			panic("bad payload")
		}
		return 7, nil
	})

	boom := results["0xboom"]
	if boom.Success() || boom.Err == nil {
		t.Fatalf("panic must surface as failure entry, got %+v", boom)
	}
	if fine := results["0xfine"]; !fine.Success() || fine.Value != 7 {
		t.Fatalf("sibling of panicking task degraded: %+v", fine)
	}
}

func TestBatchFetch_ZeroConcurrencyUsesDefault(t *testing.T) {
	results := BatchFetch(context.Background(), []string{"0xa"}, 0, func(ctx context.Context, key string) (bool, error) {
		return true, nil
	})
	if !results["0xa"].Success() {
		t.Fatalf("fetch with default concurrency failed")
	}
}
