// package tasks implements the Drive to Photos sync pipeline.
//
// The core abstraction is SyncEngine, which orchestrates one run: album
// resolution, recursive listing, filtering, deduplication, and batched
// upload/commit. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks
