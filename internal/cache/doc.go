// Package cache provides the key/value caches behind the recipe aggregator.
//
// [Memory] is a bounded LRU with a per-entry TTL for a single process.
// [Redis] stores JSON-encoded values in Redis so several processes can share
// fetched records; it does not coordinate invalidation between them.
// [Tiered] reads a fast local cache first, falls back to a shared one and
// backfills the local cache on a shared hit.
//
// All implementations share the same method set:
//
//	Get(ctx, key) (V, bool, error)
//	Set(ctx, key, value) error
//
// A miss is (zero, false, nil). Errors are reserved for backend failures.
package cache
