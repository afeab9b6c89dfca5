// Package manager owns the loaded model handles of one model class. It is
// structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig; NewWithConfig applies defaults.
//   - types.go: cache entry type.
//   - errors.go: error types and helpers (IsLoadFailed, IsClosed).
//   - ensure.go: GetOrLoad/Acquire, singleflight-deduplicated loading.
//   - unload.go: Unload and Close, waiting for in-flight users.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus collectors.
//
// Handles are never evicted implicitly. The cache grows until an explicit
// Unload or Close, so the memory footprint is bounded only by what callers load.
package manager
