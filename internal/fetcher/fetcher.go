package fetcher

import (
	"context"
	"fmt"
	"sync"
)

const DefaultConcurrency = 5

// Result is the outcome of one fetch: either Value or Err is meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) Success() bool {
	return r.Err == nil
}

type FetchFunc[T any] func(ctx context.Context, key string) (T, error)

// BatchFetch drives fn across the given keys with at most concurrency
// fetches in flight at once. Every distinct input key gets exactly one
// entry in the result map, success or failure; a failing or panicking task
// never affects the others and never propagates to the caller. Completion
// order is non-deterministic and the map carries no ordering.
func BatchFetch[T any](ctx context.Context, keys []string, concurrency int, fn FetchFunc[T]) map[string]Result[T] {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make(map[string]Result[T], len(keys))
	seen := make(map[string]struct{}, len(keys))
	sem := make(chan struct{}, concurrency)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := runFetch(ctx, key, fn)
			mu.Lock()
			results[key] = res
			mu.Unlock()
		}(key)
	}
	wg.Wait()

	return results
}

func runFetch[T any](ctx context.Context, key string, fn FetchFunc[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: fmt.Errorf("fetch %s panicked: %v", key, r)}
		}
	}()
	v, err := fn(ctx, key)
	if err != nil {
		return Result[T]{Err: err}
	}
	return Result[T]{Value: v}
}
