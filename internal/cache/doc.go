// Package cache provides LRU caching for block data.
//
// The ShardedLRUBlockCache stores recently accessed blocks read from
// snapshot blobs. It uses 64-way sharding for high concurrency:
//
//   - Lock-free shard selection using maphash
//   - Per-shard mutex for minimal contention
//   - Integrated with the resource controller for memory limits
package cache
