package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestShardedLRUBlockCache_BasicOperations(t *testing.T) {
	cache := NewShardedLRUBlockCache(1024*1024, nil) // 1MB

	ctx := context.Background()
	key := CacheKey{Kind: CacheKindBlob, Path: "scene.bvh", Offset: 0}
	data := []byte("test data")

	// Test Set and Get
	cache.Set(ctx, key, data)
	got, ok := cache.Get(ctx, key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}

	// Test miss
	missKey := CacheKey{Kind: CacheKindBlob, Path: "missing.bvh", Offset: 0}
	_, ok = cache.Get(ctx, missKey)
	if ok {
		t.Fatal("expected cache miss")
	}
}

func TestShardedLRUBlockCache_ShardDistribution(t *testing.T) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil) // 64MB

	ctx := context.Background()
	data := make([]byte, 1024) // 1KB

	// Insert 1000 items
	for i := range 1000 {
		key := CacheKey{Path: fmt.Sprintf("snap-%d.bvh", i%100), Offset: uint64(i * 4096)}
		cache.Set(ctx, key, data)
	}

	// Check that items are distributed across shards
	stats := cache.ShardStats()
	nonEmptyShards := 0
	for _, s := range stats {
		if s.Size > 0 {
			nonEmptyShards++
		}
	}

	// With 1000 items across 64 shards, we expect most shards to have items
	if nonEmptyShards < 30 {
		t.Errorf("poor shard distribution: only %d shards have items", nonEmptyShards)
	}
}

func TestShardedLRUBlockCache_Concurrent(t *testing.T) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil) // 64MB

	ctx := context.Background()
	data := make([]byte, 1024)

	const numGoroutines = 100
	const numOpsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for g := range numGoroutines {
		go func(goroutineID int) {
			defer wg.Done()
			for i := range numOpsPerGoroutine {
				key := CacheKey{
					Path:   fmt.Sprintf("snap-%d.bvh", goroutineID),
					Offset: uint64(i * 4096),
				}
				cache.Set(ctx, key, data)
				cache.Get(ctx, key)
			}
		}(g)
	}

	wg.Wait()

	hits, misses := cache.Stats()
	total := hits + misses
	if total != numGoroutines*numOpsPerGoroutine {
		t.Errorf("stats mismatch: got %d total, want %d", total, numGoroutines*numOpsPerGoroutine)
	}
}

func TestShardedLRUBlockCache_Invalidate(t *testing.T) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil)

	ctx := context.Background()
	data := []byte("test")

	for i := range 100 {
		cache.Set(ctx, CacheKey{Path: "a.bvh", Offset: uint64(i * 4096)}, data)
		cache.Set(ctx, CacheKey{Path: "b.bvh", Offset: uint64(i * 4096)}, data)
	}

	cache.Invalidate(func(key CacheKey) bool {
		return key.Path == "a.bvh"
	})

	_, ok := cache.Get(ctx, CacheKey{Path: "a.bvh", Offset: 0})
	if ok {
		t.Error("expected a.bvh blocks to be invalidated")
	}

	_, ok = cache.Get(ctx, CacheKey{Path: "b.bvh", Offset: 0})
	if !ok {
		t.Error("expected b.bvh blocks to still be cached")
	}
}

func BenchmarkLRUBlockCache_Get(b *testing.B) {
	cache := NewLRUBlockCache(64*1024*1024, nil)
	ctx := context.Background()
	key := CacheKey{Path: "scene.bvh", Offset: 0}
	cache.Set(ctx, key, make([]byte, 4096))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			cache.Get(ctx, key)
		}
	})
}

func BenchmarkShardedLRUBlockCache_Get(b *testing.B) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil)
	ctx := context.Background()
	key := CacheKey{Path: "scene.bvh", Offset: 0}
	cache.Set(ctx, key, make([]byte, 4096))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			cache.Get(ctx, key)
		}
	})
}

func BenchmarkShardedLRUBlockCache_GetMixed(b *testing.B) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil)
	ctx := context.Background()
	data := make([]byte, 4096)

	// Pre-populate
	for i := range 1000 {
		cache.Set(ctx, CacheKey{Path: fmt.Sprintf("snap-%d.bvh", i%10), Offset: uint64(i * 4096)}, data)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := CacheKey{Path: fmt.Sprintf("snap-%d.bvh", i%10), Offset: uint64(i * 4096)}
			cache.Get(ctx, key)
			i++
		}
	})
}
